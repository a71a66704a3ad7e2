package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

// TestConnectWithoutProvider 测试未检测到钱包
func TestConnectWithoutProvider(t *testing.T) {
	w := New(nil)
	ctx := context.Background()

	res := w.Connect(ctx)
	if res.OK {
		t.Fatal("Connect without provider should fail")
	}
	if !strings.HasPrefix(res.Error, "No Web3 wallet detected") {
		t.Errorf("got error %q, want prefix %q", res.Error, "No Web3 wallet detected")
	}

	// 没有钱包不算检查失败
	status := w.IsConnected(ctx)
	if !status.OK || status.Connected {
		t.Errorf("got %+v, want OK and not connected", status)
	}

	if got := w.Address(ctx); got.OK {
		t.Errorf("Address without provider should fail, got %+v", got)
	}
	if got := w.Network(ctx); got.OK {
		t.Errorf("Network without provider should fail, got %+v", got)
	}
}

// TestConnectSuccess 测试连接成功后地址被缓存
func TestConnectSuccess(t *testing.T) {
	p := NewStaticProvider(1, testAddress, "0xother")
	w := New(p)
	ctx := context.Background()

	res := w.Connect(ctx)
	if !res.OK || res.Address != testAddress {
		t.Fatalf("got %+v, want OK with first account", res)
	}

	// 钱包撤销后仍返回缓存地址
	p.Revoke()
	if got := w.Address(ctx); !got.OK || got.Address != testAddress {
		t.Errorf("got %+v, want cached address", got)
	}

	net := w.Network(ctx)
	if !net.OK || net.Network.ChainID != 1 || net.Network.Name != "mainnet" {
		t.Errorf("got %+v, want mainnet", net)
	}
}

// TestConnectErrorMapping 测试钱包错误码映射
func TestConnectErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", &ProviderError{Code: CodeUserRejected, Message: "denied"}, "User rejected the connection request."},
		{"pending", &ProviderError{Code: CodeRequestPending}, "Connection request already pending. Please check your wallet."},
		{"other code", &ProviderError{Code: -32603, Message: "internal error"}, "internal error"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStaticProvider(1, testAddress)
			p.RequestErr = tt.err
			w := New(p)

			res := w.Connect(context.Background())
			if res.OK {
				t.Fatal("Connect should fail")
			}
			if res.Error != tt.want {
				t.Errorf("got %q, want %q", res.Error, tt.want)
			}
		})
	}
}

// TestConnectNoAccounts 测试钱包未解锁
func TestConnectNoAccounts(t *testing.T) {
	w := New(NewStaticProvider(1))

	res := w.Connect(context.Background())
	if res.OK {
		t.Fatal("Connect with no accounts should fail")
	}
	if res.Error != "No accounts found. Please unlock your wallet." {
		t.Errorf("got %q", res.Error)
	}
}

// TestIsConnectedAndDisconnect 测试连接检查与断开
func TestIsConnectedAndDisconnect(t *testing.T) {
	p := NewStaticProvider(8453, testAddress)
	w := New(p)
	ctx := context.Background()

	if status := w.IsConnected(ctx); !status.OK || status.Connected {
		t.Errorf("before authorization got %+v, want not connected", status)
	}
	if got := w.Address(ctx); got.OK {
		t.Errorf("Address before authorization should fail, got %+v", got)
	}

	w.Connect(ctx)
	status := w.IsConnected(ctx)
	if !status.Connected || status.Address != testAddress {
		t.Errorf("got %+v, want connected", status)
	}

	w.Disconnect()
	if got := w.Network(ctx); got.OK {
		t.Errorf("Network after Disconnect should fail, got %+v", got)
	}
}

// TestCancelledContext 测试取消的上下文
func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(NewStaticProvider(1, testAddress))
	res := w.Connect(ctx)
	if res.OK {
		t.Fatal("Connect with cancelled context should fail")
	}
	if res.Error != context.Canceled.Error() {
		t.Errorf("got %q, want %q", res.Error, context.Canceled.Error())
	}
}

// TestShortenAddress 测试地址缩写
func TestShortenAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{testAddress, "0x1234...5678"},
		{"0x12345678", "0x12345678"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortenAddress(tt.in); got != tt.want {
			t.Errorf("ShortenAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestChainName 测试链名称
func TestChainName(t *testing.T) {
	if got := ChainName(11155111); got != "sepolia" {
		t.Errorf("got %q, want sepolia", got)
	}
	if got := ChainName(42); got != "unknown" {
		t.Errorf("got %q, want unknown", got)
	}
}
