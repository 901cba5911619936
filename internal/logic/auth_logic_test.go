package logic

import (
	"errors"
	"testing"

	"github.com/blues/quirklr/internal/auth"
	"github.com/blues/quirklr/internal/model"
)

func TestGenerateAndValidateKey(t *testing.T) {
	db := newTestDB(t)
	logic := NewAuthLogic(db)

	rawKey, err := logic.GenerateKey("0xwallet")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if rawKey == "" {
		t.Fatal("rawKey is empty")
	}

	record, err := logic.ValidateKey(rawKey)
	if err != nil {
		t.Fatalf("ValidateKey: %v", err)
	}
	if record.UserWallet != "0xwallet" {
		t.Errorf("UserWallet = %q, want 0xwallet", record.UserWallet)
	}

	// 库中只存哈希，不存原始密钥
	var stored model.ApiKeyModel
	db.Where("user_wallet = ?", "0xwallet").First(&stored)
	if stored.ApiKey == rawKey {
		t.Error("raw key stored in database")
	}
	if stored.ApiKey != auth.HashKey(rawKey) {
		t.Error("stored value is not the hash of the raw key")
	}
}

func TestRegenerateInvalidatesOldKey(t *testing.T) {
	db := newTestDB(t)
	logic := NewAuthLogic(db)

	oldKey, err := logic.GenerateKey("0xwallet")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	newKey, err := logic.GenerateKey("0xwallet")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if newKey == oldKey {
		t.Fatal("regenerated key equals old key")
	}

	// 每个钱包只保留一条记录
	var count int64
	db.Model(&model.ApiKeyModel{}).Where("user_wallet = ?", "0xwallet").Count(&count)
	if count != 1 {
		t.Errorf("key count = %d, want 1", count)
	}

	if _, err := logic.ValidateKey(oldKey); !errors.Is(err, ErrApiKeyInvalid) {
		t.Errorf("old key still valid: %v", err)
	}
	if _, err := logic.ValidateKey(newKey); err != nil {
		t.Errorf("new key invalid: %v", err)
	}
}

func TestValidateKeyUnknown(t *testing.T) {
	db := newTestDB(t)
	if _, err := NewAuthLogic(db).ValidateKey("no-such-key"); !errors.Is(err, ErrApiKeyInvalid) {
		t.Fatalf("err = %v, want ErrApiKeyInvalid", err)
	}
}

func TestHasKey(t *testing.T) {
	db := newTestDB(t)
	logic := NewAuthLogic(db)

	exists, err := logic.HasKey("0xwallet")
	if err != nil {
		t.Fatalf("HasKey: %v", err)
	}
	if exists {
		t.Error("HasKey = true before generation")
	}

	if _, err := logic.GenerateKey("0xwallet"); err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	exists, err = logic.HasKey("0xwallet")
	if err != nil {
		t.Fatalf("HasKey: %v", err)
	}
	if !exists {
		t.Error("HasKey = false after generation")
	}
}

func TestGenerateKeyEmptyWallet(t *testing.T) {
	db := newTestDB(t)
	if _, err := NewAuthLogic(db).GenerateKey(""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}
