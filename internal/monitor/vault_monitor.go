package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/blues/quirklr/internal/chain"
	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/model"
	"gorm.io/gorm"
)

// 单次FilterLogs的区块跨度，过大容易触发RPC限制
const batchSize = int64(500)

// VaultMonitor 金库合约事件审计。
// 周期性扫描金库合约的贡献事件，核对每笔链上贡献是否已有支付记录：
// 支付登记由付款方主动同步，链上成功但未登记的贡献在这里暴露出来。
type VaultMonitor struct {
	chainClient *chain.Client
	db          *gorm.DB
	interval    time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex // 保护 nextBlock
	nextBlock   int64
}

// NewVaultMonitor 创建金库事件审计器
func NewVaultMonitor(chainClient *chain.Client, db *gorm.DB, cfg *config.Config) *VaultMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	interval := time.Duration(cfg.Monitor.Interval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	return &VaultMonitor{
		chainClient: chainClient,
		db:          db,
		interval:    interval,
		ctx:         ctx,
		cancel:      cancel,
		nextBlock:   cfg.Chain.StartBlock,
	}
}

// Start 启动审计循环
func (m *VaultMonitor) Start() error {
	currentBlock, err := m.chainClient.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.nextBlock <= 0 {
		m.nextBlock = int64(currentBlock)
	}
	m.mu.Unlock()

	logger.Info("Starting vault event monitor from block %d", m.nextBlock)
	go m.loop()

	return nil
}

// Stop 停止审计循环
func (m *VaultMonitor) Stop() {
	logger.Info("Stopping vault event monitor")
	m.cancel()
}

// loop 审计循环
func (m *VaultMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Vault event monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.chainClient.GetLatestBlock(m.ctx)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}

			m.mu.RLock()
			fromBlock := m.nextBlock
			m.mu.RUnlock()

			if fromBlock > int64(currentBlock) {
				continue
			}

			m.processBlocksInBatches(fromBlock, int64(currentBlock))
		}
	}
}

// processBlocksInBatches 分批扫描区块
func (m *VaultMonitor) processBlocksInBatches(fromBlock, toBlock int64) {
	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		if err := m.auditBatch(currentFrom, currentTo); err != nil {
			logger.Error("Error auditing blocks %d-%d: %v", currentFrom, currentTo, err)
			return // 下个周期从当前位置重试
		}

		m.mu.Lock()
		m.nextBlock = currentTo + 1
		m.mu.Unlock()
	}
}

// auditBatch 审计一批区块内的贡献事件
func (m *VaultMonitor) auditBatch(fromBlock, toBlock int64) error {
	logs, err := m.chainClient.GetVaultLogs(m.ctx, fromBlock, toBlock)
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d vault logs in blocks %d-%d", len(logs), fromBlock, toBlock)

	for _, log := range logs {
		event, err := m.chainClient.ParseContributionEvent(log)
		if err != nil {
			logger.Error("Failed to parse vault event (tx: %s): %v", log.TxHash.Hex(), err)
			continue
		}
		if event == nil {
			continue // 非贡献事件
		}

		m.auditContribution(event)
	}

	return nil
}

// auditContribution 核对单笔链上贡献是否已登记
func (m *VaultMonitor) auditContribution(event *chain.ContributionEvent) {
	var count int64
	if err := m.db.Model(&model.PaymentModel{}).
		Where("payment_id = ?", event.TxHash).
		Count(&count).Error; err != nil {
		logger.Error("Failed to check payment record for tx %s: %v", event.TxHash, err)
		return
	}

	if count == 0 {
		logger.Warn("Unrecorded on-chain contribution: project=%s contributor=%s amount=%s tx=%s block=%d",
			event.ProjectId, event.Contributor, event.Amount.String(), event.TxHash, event.BlockNumber)
	}
}
