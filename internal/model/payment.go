package model

import (
	"time"
)

// PaymentModel 支付记录，链上贡献确认后写入，只增不改
type PaymentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId   string  `json:"project_id" gorm:"not null;index"`
	PaymentId   string  `json:"payment_id" gorm:"uniqueIndex;not null"` // 链上交易哈希，幂等键
	ReceiptId   string  `json:"receipt_id" gorm:"index"`                // 凭证服务签发
	PayerWallet string  `json:"payer_wallet" gorm:"not null;index"`
	Amount      float64 `json:"amount" gorm:"not null"`
	Asset       string  `json:"asset" gorm:"default:'FLR'"`
	ProofHash   string  `json:"proof_hash"`
	Reference   string  `json:"reference" gorm:"not null"` // 记账引用号(uuid)
}

// TableName 自定义表名
func (PaymentModel) TableName() string {
	return "payment"
}
