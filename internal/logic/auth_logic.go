package logic

import (
	"errors"
	"fmt"

	"github.com/blues/quirklr/internal/auth"
	"github.com/blues/quirklr/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthLogic API密钥的签发与校验
type AuthLogic struct {
	db *gorm.DB
}

// NewAuthLogic 创建鉴权业务逻辑
func NewAuthLogic(db *gorm.DB) *AuthLogic {
	return &AuthLogic{db: db}
}

// GenerateKey 为钱包签发新密钥。已有记录则覆盖旧哈希，旧密钥立即失效。
// 原始密钥只在本次返回，之后无法找回。
func (a *AuthLogic) GenerateKey(wallet string) (string, error) {
	if wallet == "" {
		return "", fmt.Errorf("%w: 钱包地址不能为空", ErrInvalid)
	}

	rawKey, hashedKey, err := auth.GenerateApiKey()
	if err != nil {
		return "", fmt.Errorf("生成API密钥失败: %w", err)
	}

	record := &model.ApiKeyModel{
		UserWallet: wallet,
		ApiKey:     hashedKey,
	}

	if err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_wallet"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "updated_at"}),
	}).Create(record).Error; err != nil {
		return "", fmt.Errorf("保存API密钥失败: %w", err)
	}

	return rawKey, nil
}

// HasKey 检查钱包是否已签发过密钥
func (a *AuthLogic) HasKey(wallet string) (bool, error) {
	if wallet == "" {
		return false, fmt.Errorf("%w: 钱包地址不能为空", ErrInvalid)
	}

	var count int64
	if err := a.db.Model(&model.ApiKeyModel{}).
		Where("user_wallet = ?", wallet).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询API密钥失败: %w", err)
	}

	return count > 0, nil
}

// ValidateKey 校验原始密钥：对来键做哈希后按哈希查库，
// 命中后再用恒定时间比较复核一次。
func (a *AuthLogic) ValidateKey(rawKey string) (*model.ApiKeyModel, error) {
	hashed := auth.HashKey(rawKey)

	var record model.ApiKeyModel
	if err := a.db.Where("api_key = ?", hashed).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApiKeyInvalid
		}
		return nil, fmt.Errorf("查询API密钥失败: %w", err)
	}

	if !auth.VerifyApiKey(rawKey, record.ApiKey) {
		return nil, ErrApiKeyInvalid
	}

	return &record, nil
}
