package logic

import (
	"context"

	"github.com/blues/quirklr/internal/proofrail"
)

// ChainAnchor 链上锚定能力，由chain.Client实现
type ChainAnchor interface {
	// RegisterProject 在金库合约登记项目，等待确认后返回交易哈希
	RegisterProject(ctx context.Context, projectId string) (string, error)
	// IsTransactionConfirmed 检查交易是否已达到确认数
	IsTransactionConfirmed(ctx context.Context, txHash string) (bool, error)
}

// ProofService ISO-20022 凭证服务能力，由proofrail.Client实现
type ProofService interface {
	RecordTip(ctx context.Context, tip proofrail.TipRecord) (string, error)
	GetReceipt(ctx context.Context, receiptId string) (map[string]interface{}, error)
}
