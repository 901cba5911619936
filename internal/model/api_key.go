package model

import (
	"time"
)

// ApiKeyModel 每个钱包一条API密钥记录，只保存单向哈希
type ApiKeyModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserWallet string `json:"user_wallet" gorm:"uniqueIndex;not null"`
	ApiKey     string `json:"-" gorm:"uniqueIndex;not null"` // sha256(rawKey) 十六进制
}

// TableName 自定义表名
func (ApiKeyModel) TableName() string {
	return "api_key"
}
