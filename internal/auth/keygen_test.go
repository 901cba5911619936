package auth

import (
	"encoding/base64"
	"testing"
)

func TestGenerateRawKey(t *testing.T) {
	key1, err := GenerateRawKey()
	if err != nil {
		t.Fatalf("GenerateRawKey: %v", err)
	}
	key2, err := GenerateRawKey()
	if err != nil {
		t.Fatalf("GenerateRawKey: %v", err)
	}

	if key1 == key2 {
		t.Error("two generated keys are identical")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(key1)
	if err != nil {
		t.Fatalf("key is not valid base64url: %v", err)
	}
	if len(decoded) != rawKeyLength {
		t.Errorf("decoded length = %d, want %d", len(decoded), rawKeyLength)
	}
}

func TestHashKey(t *testing.T) {
	hash := HashKey("some-key")

	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if hash != HashKey("some-key") {
		t.Error("hash is not deterministic")
	}
	if hash == HashKey("other-key") {
		t.Error("different inputs produced the same hash")
	}
}

func TestVerifyApiKey(t *testing.T) {
	raw, hashed, err := GenerateApiKey()
	if err != nil {
		t.Fatalf("GenerateApiKey: %v", err)
	}

	if !VerifyApiKey(raw, hashed) {
		t.Error("correct key rejected")
	}
	if VerifyApiKey("wrong-key", hashed) {
		t.Error("wrong key accepted")
	}
	if VerifyApiKey(raw, HashKey("other")) {
		t.Error("key accepted against wrong hash")
	}
}
