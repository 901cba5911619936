package proofrail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/logger"
)

// ErrUnauthorized 凭证服务鉴权失败(401)，需要单独上抛
var ErrUnauthorized = errors.New("proofrail: API authentication failed")

// TipRecord ISO-20022 记账请求体
type TipRecord struct {
	TipTxHash      string `json:"tip_tx_hash"`
	Chain          string `json:"chain"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	SenderWallet   string `json:"sender_wallet"`
	ReceiverWallet string `json:"receiver_wallet"`
	Reference      string `json:"reference"`
	CallbackUrl    string `json:"callback_url"`
}

// Client ISO-20022 凭证服务客户端
type Client struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 创建凭证服务客户端
func NewClient(cfg config.ProofrailConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseUrl:    cfg.BaseUrl,
		apiKey:     cfg.ApiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RecordTip 上报一笔收款，返回凭证服务签发的receipt_id
func (c *Client) RecordTip(ctx context.Context, tip TipRecord) (string, error) {
	var result struct {
		ReceiptId string `json:"receipt_id"`
	}

	if err := c.post(ctx, "/v1/iso/record-tip", tip, &result); err != nil {
		return "", err
	}

	if result.ReceiptId == "" {
		return "", fmt.Errorf("proofrail: record-tip returned empty receipt_id")
	}

	return result.ReceiptId, nil
}

// GetReceipt 查询凭证详情
func (c *Client) GetReceipt(ctx context.Context, receiptId string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.get(ctx, "/v1/iso/receipts/"+receiptId, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("proofrail: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("proofrail: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+endpoint, nil)
	if err != nil {
		return fmt.Errorf("proofrail: failed to build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("proofrail: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error("Proofrail request %s %s failed with status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, string(body))
		return fmt.Errorf("proofrail: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("proofrail: failed to decode response: %w", err)
	}

	return nil
}
