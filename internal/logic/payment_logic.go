package logic

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/blues/quirklr/internal/model"
	"gorm.io/gorm"
)

// PaymentLogic 支付记录查询与进度计算
type PaymentLogic struct {
	db *gorm.DB
}

// NewPaymentLogic 创建支付业务逻辑
func NewPaymentLogic(db *gorm.DB) *PaymentLogic {
	return &PaymentLogic{db: db}
}

// ProgressResult 筹款进度
type ProgressResult struct {
	ProjectId         string
	Title             string
	PaymentType       model.PaymentType
	Goal              float64
	Current           float64
	Balance           float64
	RawPercent        float64
	PercentCompletion string
	PayeeCount        int64
	Currency          string
}

// GetProjectProgress 计算项目进度：每次调用对支付流水做全量聚合。
// 筹款项目的balance为距离目标的差额；一次性项目的balance为项目累计收款。
func (p *PaymentLogic) GetProjectProgress(projectId string) (*ProgressResult, error) {
	var project model.ProjectModel
	if err := p.db.Where("project_id = ?", projectId).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}

	var agg struct {
		Total  float64
		Payees int64
	}
	if err := p.db.Model(&model.PaymentModel{}).
		Where("project_id = ?", projectId).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(DISTINCT payer_wallet) AS payees").
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("聚合支付记录失败: %w", err)
	}

	result := &ProgressResult{
		ProjectId:   project.ProjectId,
		Title:       project.Title,
		PaymentType: project.PaymentType,
		Goal:        project.FundraisingGoal,
		Current:     agg.Total,
		PayeeCount:  agg.Payees,
		Currency:    project.Currency,
	}

	if project.PaymentType == model.PaymentTypeOnetime {
		// 一次性收款以项目累计余额为准，进度百分比无意义
		result.Balance = project.Balance
		return result, nil
	}

	result.Balance = round2(math.Max(0, project.FundraisingGoal-agg.Total))
	if project.FundraisingGoal > 0 {
		result.RawPercent = round2(agg.Total / project.FundraisingGoal * 100)
	}
	result.PercentCompletion = formatPercent(result.RawPercent)

	return result, nil
}

// GetPayments 按付款钱包过滤支付记录，最近的在前
func (p *PaymentLogic) GetPayments(payerWallet string) ([]model.PaymentModel, error) {
	var payments []model.PaymentModel

	query := p.db.Order("created_at DESC")
	if payerWallet != "" {
		query = query.Where("payer_wallet = ?", payerWallet)
	}

	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("获取支付记录失败: %w", err)
	}

	return payments, nil
}

// GetPaymentsByProject 获取项目的全部支付记录
func (p *PaymentLogic) GetPaymentsByProject(projectId string) ([]model.PaymentModel, error) {
	var payments []model.PaymentModel

	if err := p.db.Where("project_id = ?", projectId).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("获取项目支付记录失败: %w", err)
	}

	return payments, nil
}

// GetPaymentByReceipt 按凭证ID获取支付记录
func (p *PaymentLogic) GetPaymentByReceipt(receiptId string) (*model.PaymentModel, error) {
	var payment model.PaymentModel
	if err := p.db.Where("receipt_id = ?", receiptId).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("获取支付记录失败: %w", err)
	}

	return &payment, nil
}

// CheckPaymentStatus 检查某钱包对某项目的支付情况
func (p *PaymentLogic) CheckPaymentStatus(projectId, payerWallet string) (bool, int64, error) {
	var count int64
	if err := p.db.Model(&model.PaymentModel{}).
		Where("project_id = ? AND payer_wallet = ?", projectId, payerWallet).
		Count(&count).Error; err != nil {
		return false, 0, fmt.Errorf("检查支付状态失败: %w", err)
	}

	return count > 0, count, nil
}

// FindPayment 查找某钱包对某项目的最早一笔支付，不存在返回ErrPaymentNotFound
func (p *PaymentLogic) FindPayment(projectId, payerWallet string) (*model.PaymentModel, error) {
	var payment model.PaymentModel
	if err := p.db.Where("project_id = ? AND payer_wallet = ?", projectId, payerWallet).
		Order("created_at ASC").
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("查询支付记录失败: %w", err)
	}

	return &payment, nil
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatPercent 百分比字符串，去掉多余的尾零（100 -> "100%"）
func formatPercent(raw float64) string {
	return strconv.FormatFloat(raw, 'f', -1, 64) + "%"
}
