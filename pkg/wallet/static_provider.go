package wallet

import (
	"context"
	"sync"
)

// StaticProvider 固定账户的钱包，用于桌面端演示和测试
//
// Connect 之前 Accounts 返回空列表，模拟用户尚未授权。
type StaticProvider struct {
	mu         sync.Mutex
	accounts   []string
	chainID    int64
	authorized bool

	// RequestErr 不为 nil 时 RequestAccounts 返回该错误
	RequestErr error
}

// NewStaticProvider 创建固定账户的钱包
func NewStaticProvider(chainID int64, accounts ...string) *StaticProvider {
	return &StaticProvider{
		accounts: append([]string(nil), accounts...),
		chainID:  chainID,
	}
}

// RequestAccounts 授权并返回账户
func (p *StaticProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RequestErr != nil {
		return nil, p.RequestErr
	}
	p.authorized = true
	return append([]string(nil), p.accounts...), nil
}

// Accounts 授权后返回账户
func (p *StaticProvider) Accounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized {
		return nil, nil
	}
	return append([]string(nil), p.accounts...), nil
}

// ChainID 返回链 ID
func (p *StaticProvider) ChainID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.chainID, nil
}

// Revoke 撤销授权，模拟用户在钱包中断开
func (p *StaticProvider) Revoke() {
	p.mu.Lock()
	p.authorized = false
	p.mu.Unlock()
}
