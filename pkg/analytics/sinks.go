package analytics

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Recorder 内存事件记录器，用于开发调试和测试断言
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

// NewRecorder 创建内存记录器
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record 追加一条事件
func (r *Recorder) Record(name string, payload map[string]any) error {
	if name == "" {
		return ErrInvalidEventName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Name:      name,
		Timestamp: r.now(),
		Payload:   clonePayload(payload),
	})
	return nil
}

// Events 返回所有事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// EventsByName 返回指定名称的事件
func (r *Recorder) EventsByName(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []Event
	for _, event := range r.events {
		if event.Name == name {
			matched = append(matched, event)
		}
	}
	return matched
}

// Count 返回事件总数
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Drain 返回并清空所有事件
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

// Clear 清空所有事件
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
	log.Printf("[Analytics] Events cleared")
}

// Export 以 YAML 导出所有事件
func (r *Recorder) Export() ([]byte, error) {
	data, err := yaml.Marshal(r.Events())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}
	return data, nil
}

// LogSink 把事件写入标准日志
type LogSink struct{}

// Record 输出 "[Analytics] name payload"
func (LogSink) Record(name string, payload map[string]any) error {
	if name == "" {
		return ErrInvalidEventName
	}
	log.Printf("[Analytics] %s %v", name, payload)
	return nil
}

// Journal 持久化事件的存储，由 storage.Store 实现
type Journal interface {
	AppendEvent(event Event) error
}

// JournalSink 把事件追加到 Journal
type JournalSink struct {
	journal Journal
	now     func() time.Time
}

// NewJournalSink 创建持久化接收方
func NewJournalSink(journal Journal) *JournalSink {
	return &JournalSink{journal: journal, now: time.Now}
}

// Record 追加一条事件
func (s *JournalSink) Record(name string, payload map[string]any) error {
	if name == "" {
		return ErrInvalidEventName
	}
	return s.journal.AppendEvent(Event{
		Name:      name,
		Timestamp: s.now(),
		Payload:   clonePayload(payload),
	})
}

// Multi 把事件分发给多个接收方；某个接收方失败或 panic 不影响其余接收方
type Multi []Sink

// Record 分发事件，返回所有失败的合并错误
func (m Multi) Record(name string, payload map[string]any) error {
	var errs []error
	for _, sink := range m {
		if err := SafeRecord(sink, name, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
