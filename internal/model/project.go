package model

import (
	"time"
)

// ProjectModel 收款项目模型
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	ProjectId   string `json:"project_id" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`

	// 收款信息
	PaymentType     PaymentType `json:"payment_type" gorm:"not null"`
	FundraisingGoal float64     `json:"fundraising_goal" gorm:"default:0"` // 仅fundraising
	FixedAmount     float64     `json:"fixed_amount" gorm:"default:0"`     // 仅onetime
	MinimumPayment  float64     `json:"minimum_payment" gorm:"default:0"`
	Currency        string      `json:"currency" gorm:"default:'FLR'"`
	Balance         float64     `json:"balance" gorm:"default:0"` // 累计收款，由支付记录同事务维护

	// 创建者信息
	CreatorWallet string `json:"creator_wallet" gorm:"not null;index"`

	// 提现状态
	WithdrawalStatus bool `json:"withdrawal_status" gorm:"default:false"`

	// 区块链信息
	ProjectCreationHash string `json:"project_creation_hash"`
}

// PaymentType 收款类型，创建后不可变更
type PaymentType string

const (
	PaymentTypeFundraising PaymentType = "fundraising" // 目标筹款
	PaymentTypeOnetime     PaymentType = "onetime"     // 一次性收款
)

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}
