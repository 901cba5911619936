package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db     *gorm.DB
	anchor ChainAnchor // 为nil时跳过链上锚定
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB, anchor ChainAnchor) *ProjectLogic {
	return &ProjectLogic{db: db, anchor: anchor}
}

// CreateProjectInput 创建项目请求
type CreateProjectInput struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	ImageUrl        string            `json:"imageUrl"`
	CreatorWallet   string            `json:"creatorWallet"`
	PaymentType     model.PaymentType `json:"paymentType"`
	FundraisingGoal float64           `json:"fundraisingGoal"`
	FixedAmount     float64           `json:"fixedAmount"`
	MinimumPayment  float64           `json:"minimumPayment"`
	Currency        string            `json:"currency"`
}

// CreateProject 创建项目：先上链登记，成功后才落库
func (p *ProjectLogic) CreateProject(ctx context.Context, input CreateProjectInput) (*model.ProjectModel, error) {
	if err := p.validateInput(input); err != nil {
		return nil, err
	}

	projectId := uuid.NewString()

	// 先锚定到金库合约，合约回滚则项目不创建
	var creationHash string
	if p.anchor != nil {
		hash, err := p.anchor.RegisterProject(ctx, projectId)
		if err != nil {
			logger.Error("On-chain registration failed for project %s: %v", projectId, err)
			return nil, fmt.Errorf("%w: %v", ErrChainAnchor, err)
		}
		creationHash = hash
		logger.Info("On-chain registration successful for project %s: %s", projectId, hash)
	} else {
		logger.Warn("Chain anchor disabled, creating project %s without on-chain registration", projectId)
	}

	currency := input.Currency
	if currency == "" {
		currency = "FLR"
	}

	project := &model.ProjectModel{
		ProjectId:           projectId,
		Title:               input.Title,
		Description:         input.Description,
		ImageURL:            input.ImageUrl,
		CreatorWallet:       input.CreatorWallet,
		PaymentType:         input.PaymentType,
		Currency:            currency,
		ProjectCreationHash: creationHash,
	}

	// 按收款类型只保留对应的金额字段
	switch input.PaymentType {
	case model.PaymentTypeFundraising:
		project.FundraisingGoal = input.FundraisingGoal
		project.MinimumPayment = input.MinimumPayment
	case model.PaymentTypeOnetime:
		project.FixedAmount = input.FixedAmount
	}

	if err := p.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("创建项目失败: %w", err)
	}

	return project, nil
}

// GetProjects 获取项目列表，可按创建者钱包过滤
func (p *ProjectLogic) GetProjects(creatorWallet string) ([]model.ProjectModel, error) {
	var projects []model.ProjectModel

	query := p.db.Order("created_at DESC")
	if creatorWallet != "" {
		query = query.Where("creator_wallet = ?", creatorWallet)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}

	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(projectId string) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := p.db.Where("project_id = ?", projectId).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目详情失败: %w", err)
	}

	return &project, nil
}

// DeleteProject 删除项目，存在任何支付记录时拒绝
func (p *ProjectLogic) DeleteProject(projectId string) error {
	project, err := p.GetProject(projectId)
	if err != nil {
		return err
	}

	var paymentCount int64
	if err := p.db.Model(&model.PaymentModel{}).
		Where("project_id = ?", projectId).
		Count(&paymentCount).Error; err != nil {
		return fmt.Errorf("检查支付记录失败: %w", err)
	}

	if paymentCount > 0 {
		return &ProjectHasPaymentsError{Count: paymentCount}
	}

	if err := p.db.Delete(&model.ProjectModel{}, project.Id).Error; err != nil {
		return fmt.Errorf("删除项目失败: %w", err)
	}

	return nil
}

// Withdraw 提现标记：单个操作内重新校验前置条件后翻转状态。
// 筹款项目要求按支付流水重算的进度达到100%；一次性收款项目不使用该标记，
// 其提现许可仅为余额大于0，由客户端检查。
func (p *ProjectLogic) Withdraw(ctx context.Context, projectId, txHash string) (*model.ProjectModel, error) {
	var project model.ProjectModel

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectId).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("获取项目失败: %w", err)
		}

		if project.PaymentType == model.PaymentTypeOnetime {
			return fmt.Errorf("%w: 一次性收款项目不使用提现标记", ErrInvalid)
		}

		// 事务内按支付流水重算进度，避免读进度和置状态之间的竞态
		var raised float64
		if err := tx.Model(&model.PaymentModel{}).
			Where("project_id = ?", projectId).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&raised).Error; err != nil {
			return fmt.Errorf("计算筹款进度失败: %w", err)
		}

		rawPercent := float64(0)
		if project.FundraisingGoal > 0 {
			rawPercent = round2(raised / project.FundraisingGoal * 100)
		}

		if rawPercent < 100 {
			return &GoalNotReachedError{Percent: rawPercent}
		}

		// 提供了提现交易哈希时，校验其已在链上确认
		if txHash != "" && p.anchor != nil {
			confirmed, err := p.anchor.IsTransactionConfirmed(ctx, txHash)
			if err != nil {
				return fmt.Errorf("校验提现交易失败: %w", err)
			}
			if !confirmed {
				return fmt.Errorf("%w: 提现交易尚未在链上确认", ErrInvalid)
			}
		}

		if err := tx.Model(&project).Update("withdrawal_status", true).Error; err != nil {
			return fmt.Errorf("更新提现状态失败: %w", err)
		}
		project.WithdrawalStatus = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Project %s marked as withdrawn (tx: %s)", projectId, txHash)
	return &project, nil
}

// validateInput 验证创建项目请求
func (p *ProjectLogic) validateInput(input CreateProjectInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: 项目标题不能为空", ErrInvalid)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: 项目描述不能为空", ErrInvalid)
	}
	if input.CreatorWallet == "" {
		return fmt.Errorf("%w: 创建者钱包地址不能为空", ErrInvalid)
	}

	switch input.PaymentType {
	case model.PaymentTypeFundraising:
		if input.FundraisingGoal <= 0 {
			return fmt.Errorf("%w: 筹款目标必须大于0", ErrInvalid)
		}
	case model.PaymentTypeOnetime:
		if input.FixedAmount <= 0 {
			return fmt.Errorf("%w: 固定金额必须大于0", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: 收款类型必须为 fundraising 或 onetime", ErrInvalid)
	}

	return nil
}
