package logic

import (
	"context"
	"fmt"
	"testing"

	"github.com/blues/quirklr/internal/database"
	"github.com/blues/quirklr/internal/model"
	"github.com/blues/quirklr/internal/proofrail"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 每个测试一个独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// stubAnchor 链上锚定桩
type stubAnchor struct {
	registerHash string
	registerErr  error
	confirmed    bool
	confirmErr   error
	registered   []string
}

func (s *stubAnchor) RegisterProject(_ context.Context, projectId string) (string, error) {
	if s.registerErr != nil {
		return "", s.registerErr
	}
	s.registered = append(s.registered, projectId)
	if s.registerHash == "" {
		return "0xabc123", nil
	}
	return s.registerHash, nil
}

func (s *stubAnchor) IsTransactionConfirmed(_ context.Context, _ string) (bool, error) {
	return s.confirmed, s.confirmErr
}

// stubProof 凭证服务桩
type stubProof struct {
	recordErr  error
	receiptErr error
	calls      int
	lastTip    proofrail.TipRecord
	receipt    map[string]interface{}
}

func (s *stubProof) RecordTip(_ context.Context, tip proofrail.TipRecord) (string, error) {
	s.calls++
	s.lastTip = tip
	if s.recordErr != nil {
		return "", s.recordErr
	}
	return fmt.Sprintf("receipt-%d", s.calls), nil
}

func (s *stubProof) GetReceipt(_ context.Context, _ string) (map[string]interface{}, error) {
	if s.receiptErr != nil {
		return nil, s.receiptErr
	}
	if s.receipt != nil {
		return s.receipt, nil
	}
	return map[string]interface{}{"status": "recorded"}, nil
}

// mustCreateProject 直接落库一个项目
func mustCreateProject(t *testing.T, db *gorm.DB, project *model.ProjectModel) *model.ProjectModel {
	t.Helper()
	if project.ProjectId == "" {
		project.ProjectId = "project-" + t.Name()
	}
	if project.Currency == "" {
		project.Currency = "FLR"
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

// mustCreatePayment 直接落库一笔支付
func mustCreatePayment(t *testing.T, db *gorm.DB, payment *model.PaymentModel) *model.PaymentModel {
	t.Helper()
	if payment.Reference == "" {
		payment.Reference = "ref-" + payment.PaymentId
	}
	if payment.Asset == "" {
		payment.Asset = "FLR"
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	return payment
}
