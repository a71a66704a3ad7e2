// Package wallet 封装 Web3 钱包的只读连接
//
// 只读取地址用于展示，不发起任何交易。具体钱包通过 Provider 接口注入，
// 所有操作都返回结果结构而不是错误，由界面决定如何提示。
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// 钱包错误码（EIP-1193）
const (
	CodeUserRejected   = 4001
	CodeRequestPending = -32002
)

// 界面提示文案
const (
	msgNoWallet       = "No Web3 wallet detected. Please install MetaMask or another Web3 wallet."
	msgNoWalletShort  = "No Web3 wallet detected."
	msgNoAccounts     = "No accounts found. Please unlock your wallet."
	msgUserRejected   = "User rejected the connection request."
	msgRequestPending = "Connection request already pending. Please check your wallet."
	msgConnectFailed  = "Failed to connect to wallet."
	msgNotConnected   = "No wallet connected. Please connect your wallet first."
	msgAddressFailed  = "Failed to get wallet address."
	msgCheckFailed    = "Failed to check wallet connection."
	msgNoProvider     = "No provider available. Please connect your wallet first."
	msgNetworkFailed  = "Failed to get network information."
)

// Provider 钱包提供方
type Provider interface {
	// RequestAccounts 请求授权并返回账户（eth_requestAccounts）
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts 返回已授权的账户，不弹出授权（eth_accounts）
	Accounts(ctx context.Context) ([]string, error)
	// ChainID 返回当前链 ID
	ChainID(ctx context.Context) (int64, error)
}

// ProviderError 钱包返回的错误
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet provider error %d: %s", e.Code, e.Message)
}

// Result Connect / Address 的结果
type Result struct {
	OK      bool
	Address string
	Error   string
}

// Status IsConnected 的结果
type Status struct {
	OK        bool
	Connected bool
	Address   string
	Error     string
}

// Network 链信息
type Network struct {
	ChainID int64
	Name    string
}

// NetworkResult Network 的结果
type NetworkResult struct {
	OK      bool
	Network Network
	Error   string
}

// Wallet 钱包连接状态
type Wallet struct {
	mu        sync.Mutex
	provider  Provider // 为 nil 表示未检测到钱包
	address   string
	connected bool
}

// New 创建钱包；provider 为 nil 表示环境中没有钱包
func New(provider Provider) *Wallet {
	return &Wallet{provider: provider}
}

// Connect 请求授权并记录第一个账户
func (w *Wallet) Connect(ctx context.Context) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.provider == nil {
		return Result{Error: msgNoWallet}
	}

	accounts, err := w.provider.RequestAccounts(ctx)
	if err != nil {
		log.Printf("[Wallet] Connection error: %v", err)
		return Result{Error: connectErrorMessage(err)}
	}
	if len(accounts) == 0 {
		return Result{Error: msgNoAccounts}
	}

	w.address = accounts[0]
	w.connected = true
	log.Printf("[Wallet] Connected: %s", w.address)
	return Result{OK: true, Address: w.address}
}

// Address 返回当前地址，优先使用缓存，不弹出授权
func (w *Wallet) Address(ctx context.Context) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.address != "" {
		return Result{OK: true, Address: w.address}
	}
	if w.provider == nil {
		return Result{Error: msgNoWalletShort}
	}

	accounts, err := w.provider.Accounts(ctx)
	if err != nil {
		log.Printf("[Wallet] Get address error: %v", err)
		return Result{Error: errorMessage(err, msgAddressFailed)}
	}
	if len(accounts) == 0 {
		return Result{Error: msgNotConnected}
	}

	w.address = accounts[0]
	w.connected = true
	return Result{OK: true, Address: w.address}
}

// IsConnected 检查是否已有授权账户；没有钱包时 OK 为 true、Connected 为 false
func (w *Wallet) IsConnected(ctx context.Context) Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.provider == nil {
		return Status{OK: true}
	}

	accounts, err := w.provider.Accounts(ctx)
	if err != nil {
		log.Printf("[Wallet] Connection check error: %v", err)
		return Status{Error: errorMessage(err, msgCheckFailed)}
	}
	if len(accounts) == 0 {
		return Status{OK: true}
	}

	w.address = accounts[0]
	w.connected = true
	return Status{OK: true, Connected: true, Address: w.address}
}

// Network 返回当前链信息，需要先连接
func (w *Wallet) Network(ctx context.Context) NetworkResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.provider == nil || !w.connected {
		return NetworkResult{Error: msgNoProvider}
	}

	chainID, err := w.provider.ChainID(ctx)
	if err != nil {
		log.Printf("[Wallet] Network error: %v", err)
		return NetworkResult{Error: errorMessage(err, msgNetworkFailed)}
	}
	return NetworkResult{OK: true, Network: Network{ChainID: chainID, Name: ChainName(chainID)}}
}

// Disconnect 清除本地连接状态
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	w.address = ""
	w.connected = false
	w.mu.Unlock()
	log.Printf("[Wallet] Disconnected")
}

// ShortenAddress 缩短地址用于展示：0x1234...5678
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// ChainName 常见链 ID 的名称
func ChainName(chainID int64) string {
	switch chainID {
	case 1:
		return "mainnet"
	case 11155111:
		return "sepolia"
	case 137:
		return "matic"
	case 8453:
		return "base"
	}
	return "unknown"
}

func connectErrorMessage(err error) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Code {
		case CodeUserRejected:
			return msgUserRejected
		case CodeRequestPending:
			return msgRequestPending
		}
	}
	return errorMessage(err, msgConnectFailed)
}

func errorMessage(err error, fallback string) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.Message != "" {
		return providerErr.Message
	}
	if err.Error() != "" {
		return err.Error()
	}
	return fallback
}
