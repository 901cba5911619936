package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/blues/quirklr/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// NativeToken 原生代币的约定地址
const NativeToken = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// Step 支付流程的步骤状态
type Step string

const (
	StepIdle      Step = "idle"
	StepApproving Step = "approving"
	StepPaying    Step = "paying"
	StepSyncing   Step = "syncing"
	StepError     Step = "error"
)

// Orchestrator 付款方流程编排：授权 -> 贡献 -> 等确认 -> 同步后端。
// 无重试：任何一步失败即终止，由付款方重新发起。
type Orchestrator struct {
	chain      *Client
	backendUrl string
	httpClient *http.Client
	onStep     func(Step)
}

// NewOrchestrator 创建流程编排器。onStep可为nil，每步切换时回调
func NewOrchestrator(chain *Client, backendUrl string, onStep func(Step)) *Orchestrator {
	return &Orchestrator{
		chain:      chain,
		backendUrl: backendUrl,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		onStep:     onStep,
	}
}

// ContributeInput 付款请求
type ContributeInput struct {
	ProjectId    string
	Amount       float64
	Asset        string
	TokenAddress string // 空或NativeToken表示原生代币
	Decimals     int    // 代币精度，0表示18
}

// ContributeResult 付款结果
type ContributeResult struct {
	TxHash    string
	ReceiptId string
	Balance   float64
}

// Contribute 执行完整的付款流程
func (o *Orchestrator) Contribute(ctx context.Context, input ContributeInput) (*ContributeResult, error) {
	decimals := input.Decimals
	if decimals == 0 {
		decimals = 18
	}
	amountInSmallestUnit := toSmallestUnit(input.Amount, decimals)

	native := input.TokenAddress == "" || input.TokenAddress == NativeToken

	// 第一步：ERC20代币需要先授权金库合约
	if !native {
		o.setStep(StepApproving)
		approveHash, err := o.chain.Approve(ctx, common.HexToAddress(input.TokenAddress), amountInSmallestUnit)
		if err != nil {
			o.setStep(StepError)
			return nil, fmt.Errorf("授权代币失败: %w", err)
		}
		logger.Info("Token approved for project %s (tx: %s)", input.ProjectId, approveHash)
	}

	// 第二步：发起贡献交易并等待确认
	o.setStep(StepPaying)
	txHash, err := o.chain.Contribute(ctx, input.ProjectId, amountInSmallestUnit, native)
	if err != nil {
		o.setStep(StepError)
		return nil, fmt.Errorf("贡献交易失败: %w", err)
	}
	logger.Info("Contribution confirmed for project %s (tx: %s)", input.ProjectId, txHash)

	// 第三步：链上确认后同步到后端登记支付
	o.setStep(StepSyncing)
	receiptId, balance, err := o.syncPayment(ctx, input, txHash)
	if err != nil {
		o.setStep(StepError)
		// 链上支付已成功，只是登记失败
		return nil, fmt.Errorf("支付成功但后端登记失败: %w", err)
	}

	o.setStep(StepIdle)
	return &ContributeResult{TxHash: txHash, ReceiptId: receiptId, Balance: balance}, nil
}

// Withdraw 执行提现流程：先查后端进度，达标后发起链上提现，
// 确认后回写提现状态
func (o *Orchestrator) Withdraw(ctx context.Context, projectId string) (string, error) {
	// 链上调用前先读进度，未达标直接拒绝
	var progress struct {
		RawPercent float64 `json:"raw_percent"`
	}
	if err := o.getJSON(ctx, "/api/payments/fundraising_progress/"+projectId, &progress); err != nil {
		return "", fmt.Errorf("查询筹款进度失败: %w", err)
	}
	if progress.RawPercent < 100 {
		return "", fmt.Errorf("筹款目标尚未达成，当前进度 %.2f%%，无法提现", progress.RawPercent)
	}

	txHash, err := o.chain.Withdraw(ctx, projectId)
	if err != nil {
		return "", fmt.Errorf("提现交易失败: %w", err)
	}
	logger.Info("Withdrawal confirmed for project %s (tx: %s)", projectId, txHash)

	// 回写后端提现状态，服务端会再次校验前置条件
	body := map[string]string{"projectId": projectId, "txHash": txHash}
	if err := o.postJSON(ctx, "/api/projects/withdraw", body, nil); err != nil {
		return txHash, fmt.Errorf("提现成功但状态回写失败: %w", err)
	}

	return txHash, nil
}

// syncPayment 调用后端登记支付
func (o *Orchestrator) syncPayment(ctx context.Context, input ContributeInput, txHash string) (string, float64, error) {
	body := map[string]interface{}{
		"projectId":   input.ProjectId,
		"paymentId":   txHash,
		"payerWallet": o.chain.AccountAddress().Hex(),
		"amount":      input.Amount,
		"asset":       input.Asset,
	}

	var result struct {
		Payment struct {
			ReceiptId string `json:"receiptId"`
		} `json:"payment"`
		NewTotalBalance float64 `json:"newTotalBalance"`
	}
	if err := o.postJSON(ctx, "/api/proofrails/add_payment", body, &result); err != nil {
		return "", 0, err
	}

	return result.Payment.ReceiptId, result.NewTotalBalance, nil
}

func (o *Orchestrator) setStep(step Step) {
	logger.Debug("Orchestrator step: %s", step)
	if o.onStep != nil {
		o.onStep(step)
	}
}

func (o *Orchestrator) postJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.backendUrl+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return o.doJSON(req, out)
}

func (o *Orchestrator) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.backendUrl+endpoint, nil)
	if err != nil {
		return err
	}

	return o.doJSON(req, out)
}

func (o *Orchestrator) doJSON(req *http.Request, out interface{}) error {
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			return fmt.Errorf("backend returned %d: %s", resp.StatusCode, errBody.Error)
		}
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// toSmallestUnit 按代币精度把金额换算到最小单位
func toSmallestUnit(amount float64, decimals int) *big.Int {
	f := new(big.Float).SetFloat64(amount)
	exp := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f.Mul(f, exp)

	result, _ := f.Int(nil)
	return result
}
