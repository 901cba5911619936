package proofrail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/quirklr/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.ProofrailConfig{
		BaseUrl: server.URL,
		ApiKey:  "test-key",
		Timeout: 5,
	})
}

func TestRecordTip(t *testing.T) {
	var gotTip TipRecord
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/iso/record-tip" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotTip); err != nil {
			t.Errorf("decode tip: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"receipt_id": "receipt-123"})
	}))
	defer server.Close()

	receiptId, err := newTestClient(server).RecordTip(context.Background(), TipRecord{
		TipTxHash:    "0xabc",
		Chain:        "coston2",
		Amount:       "50",
		Currency:     "FLR",
		SenderWallet: "0xsender",
		Reference:    "ref-1",
	})
	if err != nil {
		t.Fatalf("RecordTip: %v", err)
	}

	if receiptId != "receipt-123" {
		t.Errorf("receiptId = %q, want receipt-123", receiptId)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-Key = %q, want test-key", gotKey)
	}
	if gotTip.TipTxHash != "0xabc" || gotTip.Amount != "50" {
		t.Errorf("tip payload = %+v", gotTip)
	}
}

func TestRecordTipEmptyReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	if _, err := newTestClient(server).RecordTip(context.Background(), TipRecord{}); err == nil {
		t.Fatal("expected error for empty receipt_id")
	}
}

func TestRecordTipUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server).RecordTip(context.Background(), TipRecord{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRecordTipServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server).RecordTip(context.Background(), TipRecord{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("500 must not map to ErrUnauthorized")
	}
}

func TestGetReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/iso/receipts/receipt-123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"receipt_id": "receipt-123",
			"status":     "recorded",
		})
	}))
	defer server.Close()

	receipt, err := newTestClient(server).GetReceipt(context.Background(), "receipt-123")
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if receipt["status"] != "recorded" {
		t.Errorf("receipt = %v", receipt)
	}
}
