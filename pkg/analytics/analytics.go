// Package analytics 记录用户交互事件
//
// 核心逻辑只依赖 Sink 接口；事件记录失败永远不会影响画面和音效。
package analytics

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"time"
)

// 常用事件名称
const (
	EventPageView          = "page_view"
	EventError             = "error"
	EventActionTriggered   = "action_triggered"
	EventInstallClicked    = "install_clicked"
	EventSummonAction      = "summon_action"
	EventCharacterSelected = "character_selected"
	EventWalletConnected   = "wallet_connected"
	EventWalletFailed      = "wallet_connection_failed"
	EventWalletDisconnect  = "wallet_disconnected"
	EventBackToHome        = "back_to_home"
)

var (
	// ErrInvalidEventName 事件名称为空
	ErrInvalidEventName = errors.New("analytics: invalid event name")
	// ErrSink 外部事件接收方出错，调用方应记录后忽略
	ErrSink = errors.New("analytics: sink failed")
)

// Event 一条事件记录
type Event struct {
	Name      string         `yaml:"name"`
	Timestamp time.Time      `yaml:"timestamp"`
	Payload   map[string]any `yaml:"payload,omitempty"`
}

// Sink 事件接收方
type Sink interface {
	Record(name string, payload map[string]any) error
}

// SinkFunc 让普通函数满足 Sink 接口
type SinkFunc func(name string, payload map[string]any) error

// Record 调用 f(name, payload)
func (f SinkFunc) Record(name string, payload map[string]any) error {
	return f(name, payload)
}

// SinkError 包装接收方返回的错误或 panic
type SinkError struct {
	Event string
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("analytics: record %s: %v", e.Event, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

func (e *SinkError) Is(target error) bool { return target == ErrSink }

// SafeRecord 调用 sink.Record，把错误和 panic 都转换为 *SinkError，自身从不 panic
// sink 为 nil 时什么都不做
func SafeRecord(sink Sink, name string, payload map[string]any) (err error) {
	if sink == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &SinkError{Event: name, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			log.Printf("[Analytics] Warning: %v", err)
		}
	}()

	if err := sink.Record(name, clonePayload(payload)); err != nil {
		var sinkErr *SinkError
		if errors.As(err, &sinkErr) {
			return err
		}
		return &SinkError{Event: name, Err: err}
	}
	return nil
}

// TrackPageView 记录页面访问
func TrackPageView(sink Sink, page string, extra map[string]any) error {
	payload := map[string]any{"page": page}
	maps.Copy(payload, extra)
	return SafeRecord(sink, EventPageView, payload)
}

// TrackError 记录错误
func TrackError(sink Sink, message string, extra map[string]any) error {
	payload := map[string]any{"message": message}
	maps.Copy(payload, extra)
	return SafeRecord(sink, EventError, payload)
}

// clonePayload 浅拷贝，接收方保存的 payload 不会被调用方后续修改影响
func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return maps.Clone(payload)
}
