package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 金库合约ABI（简化版）
const vaultABI = `[
	{
		"name": "registerProject",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "_projectId", "type": "string"}],
		"outputs": []
	},
	{
		"name": "contribute",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "_projectId", "type": "string"},
			{"name": "_amount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"name": "withdraw",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "_projectId", "type": "string"}],
		"outputs": []
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "contributor", "type": "address"},
			{"indexed": false, "name": "projectId", "type": "string"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "ContributionMade",
		"type": "event"
	}
]`

// ERC20授权ABI，orchestrator在代币支付前调用approve
const erc20ABI = `[
	{
		"name": "approve",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

// Client 金库合约客户端
type Client struct {
	mu            sync.Mutex // 串行化发交易，避免nonce冲突
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	chainId       *big.Int
	vaultAddr     common.Address
	confirmations int
	vaultABI      abi.ABI
	erc20ABI      abi.ABI
}

// Init 初始化链客户端
func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接RPC节点
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain client: %w", err)
	}

	// 测试连接
	if _, err := client.BlockNumber(context.TODO()); err != nil {
		client.Close()
		return nil, fmt.Errorf("chain client connection test failed: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedVaultABI, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse vault ABI: %w", err)
	}
	parsedERC20ABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	confirmations := cfg.Confirmations
	if confirmations <= 0 {
		confirmations = 1
	}

	logger.Info("Connected to %s (chain id: %d, vault: %s)", cfg.ChainType, cfg.ChainId, cfg.VaultAddress)

	return &Client{
		client:        client,
		privateKey:    privateKey,
		chainId:       big.NewInt(cfg.ChainId),
		vaultAddr:     common.HexToAddress(cfg.VaultAddress),
		confirmations: confirmations,
		vaultABI:      parsedVaultABI,
		erc20ABI:      parsedERC20ABI,
	}, nil
}

// AccountAddress 获取签名账户地址
func (c *Client) AccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// VaultAddress 获取金库合约地址
func (c *Client) VaultAddress() common.Address {
	return c.vaultAddr
}

// RegisterProject 在金库合约登记项目，等待确认后返回交易哈希。
// 合约回滚时项目不会落库，由调用方保证。
func (c *Client) RegisterProject(ctx context.Context, projectId string) (string, error) {
	tx, err := c.transactVault(ctx, nil, "registerProject", projectId)
	if err != nil {
		return "", fmt.Errorf("registerProject transaction failed: %w", err)
	}

	if err := c.WaitForConfirmation(ctx, tx.Hash()); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

// Contribute 向金库合约贡献。原生代币支付时金额随交易转账，
// 代币支付需要先Approve
func (c *Client) Contribute(ctx context.Context, projectId string, amount *big.Int, native bool) (string, error) {
	var value *big.Int
	if native {
		value = amount
	}

	tx, err := c.transactVault(ctx, value, "contribute", projectId, amount)
	if err != nil {
		return "", fmt.Errorf("contribute transaction failed: %w", err)
	}

	if err := c.WaitForConfirmation(ctx, tx.Hash()); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

// Approve 授权金库合约划转ERC20代币
func (c *Client) Approve(ctx context.Context, token common.Address, amount *big.Int) (string, error) {
	c.mu.Lock()
	auth, err := c.transactOpts(ctx)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}

	bound := bind.NewBoundContract(token, c.erc20ABI, c.client, c.client, c.client)
	tx, err := bound.Transact(auth, "approve", c.vaultAddr, amount)
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("approve transaction failed: %w", err)
	}

	if err := c.WaitForConfirmation(ctx, tx.Hash()); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

// Withdraw 调用金库合约提现，等待确认后返回交易哈希
func (c *Client) Withdraw(ctx context.Context, projectId string) (string, error) {
	tx, err := c.transactVault(ctx, nil, "withdraw", projectId)
	if err != nil {
		return "", fmt.Errorf("withdraw transaction failed: %w", err)
	}

	if err := c.WaitForConfirmation(ctx, tx.Hash()); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

// transactVault 向金库合约发一笔交易
func (c *Client) transactVault(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	auth, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	auth.Value = value

	bound := bind.NewBoundContract(c.vaultAddr, c.vaultABI, c.client, c.client, c.client)
	return bound.Transact(auth, method, args...)
}

// transactOpts 构造交易授权
func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// GetTransactionReceipt 获取交易回执
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, txHash)
}

// IsTransactionConfirmed 检查交易是否成功且达到确认数
func (c *Client) IsTransactionConfirmed(ctx context.Context, txHash string) (bool, error) {
	receipt, err := c.GetTransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return false, fmt.Errorf("transaction %s reverted", txHash)
	}

	latestBlock, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}

	return latestBlock >= receipt.BlockNumber.Uint64()+uint64(c.confirmations)-1, nil
}

// WaitForConfirmation 轮询等待交易上链并达到确认数
func (c *Client) WaitForConfirmation(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		confirmed, err := c.IsTransactionConfirmed(ctx, txHash.Hex())
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for transaction %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetVaultLogs 获取金库合约在区块范围内的日志
func (c *Client) GetVaultLogs(ctx context.Context, fromBlock, toBlock int64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: []common.Address{c.vaultAddr},
	}

	return c.client.FilterLogs(ctx, query)
}

// ContributionEvent 金库合约的贡献事件
type ContributionEvent struct {
	Contributor string
	ProjectId   string
	Amount      *big.Int
	TxHash      string
	BlockNumber uint64
}

// ParseContributionEvent 解析贡献事件日志，非贡献事件返回nil
func (c *Client) ParseContributionEvent(log types.Log) (*ContributionEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != c.vaultABI.Events["ContributionMade"].ID {
		return nil, nil
	}

	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("invalid ContributionMade event: insufficient topics")
	}

	values, err := c.vaultABI.Unpack("ContributionMade", log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack ContributionMade event: %w", err)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("invalid ContributionMade event: insufficient data")
	}

	projectId, ok := values[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid ContributionMade event: projectId is not a string")
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid ContributionMade event: amount is not a uint256")
	}

	return &ContributionEvent{
		Contributor: common.BytesToAddress(log.Topics[1].Bytes()).Hex(),
		ProjectId:   projectId,
		Amount:      amount,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
	}, nil
}

// Close 关闭客户端连接
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
	logger.Info("Chain client closed")
}
