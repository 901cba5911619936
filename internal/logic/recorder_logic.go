package logic

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/model"
	"github.com/blues/quirklr/internal/proofrail"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecorderLogic 支付登记：链上交易确认后由客户端调用，
// 生成凭证并在同一事务内写入支付记录、累加项目余额。
type RecorderLogic struct {
	db        *gorm.DB
	proof     ProofService
	chainName string
}

// NewRecorderLogic 创建支付登记逻辑
func NewRecorderLogic(db *gorm.DB, proof ProofService, chainName string) *RecorderLogic {
	if chainName == "" {
		chainName = "coston2"
	}
	return &RecorderLogic{db: db, proof: proof, chainName: chainName}
}

// AddPaymentInput 支付登记请求
type AddPaymentInput struct {
	ProjectId   string  `json:"projectId"`
	PaymentId   string  `json:"paymentId"` // 链上交易哈希
	PayerWallet string  `json:"payerWallet"`
	Amount      float64 `json:"amount"`
	Asset       string  `json:"asset"`
}

// AddPayment 登记一笔已确认的链上贡献。
// 交易哈希是幂等键：重复提交被唯一索引拒绝，不会产生重复记录或重复计入余额。
func (r *RecorderLogic) AddPayment(ctx context.Context, input AddPaymentInput) (*model.PaymentModel, float64, error) {
	if err := r.validateInput(input); err != nil {
		return nil, 0, err
	}

	// 幂等预检：同一交易哈希只登记一次
	var dup int64
	if err := r.db.Model(&model.PaymentModel{}).
		Where("payment_id = ?", input.PaymentId).
		Count(&dup).Error; err != nil {
		return nil, 0, fmt.Errorf("检查重复支付失败: %w", err)
	}
	if dup > 0 {
		return nil, 0, ErrDuplicatePayment
	}

	// 项目必须存在，否则不产生孤儿凭证
	var project model.ProjectModel
	if err := r.db.Where("project_id = ?", input.ProjectId).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProjectNotFound
		}
		return nil, 0, fmt.Errorf("获取项目失败: %w", err)
	}

	asset := input.Asset
	if asset == "" {
		asset = "FLR"
	}

	reference := uuid.NewString()

	// 调用凭证服务生成ISO-20022收款凭证
	receiptId, err := r.proof.RecordTip(ctx, proofrail.TipRecord{
		TipTxHash:      input.PaymentId,
		Chain:          r.chainName,
		Amount:         strconv.FormatFloat(input.Amount, 'f', -1, 64),
		Currency:       asset,
		SenderWallet:   input.PayerWallet,
		ReceiverWallet: "platform",
		Reference:      reference,
	})
	if err != nil {
		if errors.Is(err, proofrail.ErrUnauthorized) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("生成收款凭证失败: %w", err)
	}

	payment := &model.PaymentModel{
		ProjectId:   input.ProjectId,
		PaymentId:   input.PaymentId,
		ReceiptId:   receiptId,
		PayerWallet: input.PayerWallet,
		Amount:      input.Amount,
		Asset:       asset,
		ProofHash:   input.PaymentId,
		Reference:   reference,
	}

	// 支付记录与余额累加在同一事务内完成，保证流水与计数器一致
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePayment
			}
			return fmt.Errorf("写入支付记录失败: %w", err)
		}

		if err := tx.Model(&model.ProjectModel{}).
			Where("project_id = ?", input.ProjectId).
			Update("balance", gorm.Expr("balance + ?", input.Amount)).Error; err != nil {
			return fmt.Errorf("更新项目余额失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	newBalance := round2(project.Balance + input.Amount)
	logger.Info("Recorded payment %s for project %s (amount: %v, receipt: %s)",
		input.PaymentId, input.ProjectId, input.Amount, receiptId)

	return payment, newBalance, nil
}

// GetReceiptDetails 获取支付记录及凭证服务侧的实时凭证
func (r *RecorderLogic) GetReceiptDetails(ctx context.Context, receiptId string) (*model.PaymentModel, map[string]interface{}, error) {
	var payment model.PaymentModel
	if err := r.db.Where("receipt_id = ?", receiptId).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, fmt.Errorf("获取支付记录失败: %w", err)
	}

	proof, err := r.proof.GetReceipt(ctx, receiptId)
	if err != nil {
		if errors.Is(err, proofrail.ErrUnauthorized) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("查询凭证失败: %w", err)
	}

	return &payment, proof, nil
}

// validateInput 验证支付登记请求
func (r *RecorderLogic) validateInput(input AddPaymentInput) error {
	if input.ProjectId == "" {
		return fmt.Errorf("%w: 项目ID不能为空", ErrInvalid)
	}
	if input.PaymentId == "" {
		return fmt.Errorf("%w: 交易哈希不能为空", ErrInvalid)
	}
	if input.PayerWallet == "" {
		return fmt.Errorf("%w: 付款钱包地址不能为空", ErrInvalid)
	}
	if input.Amount <= 0 {
		return fmt.Errorf("%w: 支付金额必须大于0", ErrInvalid)
	}
	return nil
}
