package main

import (
	"context"
	"flag"
	"time"

	"github.com/blues/quirklr/internal/chain"
	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/logger"
)

// 付款方命令行工具：走完整的付款流程（授权 -> 贡献 -> 同步后端），
// 或对达标的筹款项目发起提现。签名私钥与RPC取自配置文件。
func main() {
	var (
		action    = flag.String("action", "contribute", "contribute 或 withdraw")
		projectId = flag.String("project", "", "项目ID")
		amount    = flag.Float64("amount", 0, "付款金额")
		asset     = flag.String("asset", "FLR", "资产符号")
		token     = flag.String("token", "", "ERC20代币地址，留空表示原生代币")
		decimals  = flag.Int("decimals", 18, "代币精度")
		backend   = flag.String("backend", "http://localhost:8080", "后端地址")
		timeout   = flag.Duration("timeout", 5*time.Minute, "整体超时")
	)
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	if *projectId == "" {
		logger.Fatal("Missing -project")
	}

	chainClient, err := chain.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}
	defer chainClient.Close()

	orchestrator := chain.NewOrchestrator(chainClient, *backend, func(step chain.Step) {
		logger.Info("Step: %s", step)
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *action {
	case "contribute":
		if *amount <= 0 {
			logger.Fatal("Missing or invalid -amount")
		}

		result, err := orchestrator.Contribute(ctx, chain.ContributeInput{
			ProjectId:    *projectId,
			Amount:       *amount,
			Asset:        *asset,
			TokenAddress: *token,
			Decimals:     *decimals,
		})
		if err != nil {
			logger.Fatal("Contribution failed: %v", err)
		}
		logger.Info("Contribution recorded: tx=%s receipt=%s balance=%v",
			result.TxHash, result.ReceiptId, result.Balance)

	case "withdraw":
		txHash, err := orchestrator.Withdraw(ctx, *projectId)
		if err != nil {
			logger.Fatal("Withdrawal failed: %v", err)
		}
		logger.Info("Withdrawal completed: tx=%s", txHash)

	default:
		logger.Fatal("Unknown action: %s", *action)
	}
}
