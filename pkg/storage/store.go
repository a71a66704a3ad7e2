// Package storage 持久化页面状态
//
// 布局与网页版的 localStorage 一致：扁平的字符串键值。
// 底层使用 gdata 跨平台存储；gdataManager 为 nil 时降级为仅内存存储。
package storage

import (
	"fmt"
	"log"
	"sync"

	"github.com/decker502/mangabot/pkg/analytics"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 持久化键
const (
	KeySelectedCharacter = "selectedCharacter"
	KeyBotInstalled      = "botInstalled"
)

// 存储路径常量
const (
	stateObject     = "storage"
	journalObject   = "analytics"
	journalProperty = "events"

	// maxJournalEvents 事件日志最多保留的条数，超出时丢弃最旧的
	maxJournalEvents = 200
)

// Store 扁平键值存储
type Store struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager   // 可为 nil（降级模式）
	memory       map[string]string // 降级模式下的数据
	journal      []analytics.Event // 降级模式下的事件日志
}

// Open 打开应用的 gdata 存储
func Open(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage for %s: %w", appName, err)
	}
	return m, nil
}

// NewStore 创建存储
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存）
func NewStore(gdataManager *gdata.Manager) *Store {
	if gdataManager == nil {
		log.Printf("[Storage] No gdata manager, running in memory-only mode")
	}
	return &Store{
		gdataManager: gdataManager,
		memory:       make(map[string]string),
	}
}

// Get 读取键值；不存在时第二个返回值为 false
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gdataManager == nil {
		value, ok := s.memory[key]
		return value, ok, nil
	}

	if !s.gdataManager.ObjectPropExists(stateObject, key) {
		return "", false, nil
	}
	data, err := s.gdataManager.LoadObjectProp(stateObject, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set 写入键值
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gdataManager == nil {
		s.memory[key] = value
		return nil
	}
	if err := s.gdataManager.SaveObjectProp(stateObject, key, []byte(value)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete 删除键；不存在时不报错
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gdataManager == nil {
		delete(s.memory, key)
		return nil
	}
	if !s.gdataManager.ObjectPropExists(stateObject, key) {
		return nil
	}
	if err := s.gdataManager.DeleteObjectProp(stateObject, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SelectedCharacter 返回已保存的角色 ID
func (s *Store) SelectedCharacter() (string, bool) {
	value, ok, err := s.Get(KeySelectedCharacter)
	if err != nil {
		log.Printf("[Storage] Warning: %v", err)
		return "", false
	}
	return value, ok && value != ""
}

// SetSelectedCharacter 保存选中的角色 ID；空字符串表示清除
func (s *Store) SetSelectedCharacter(id string) error {
	if id == "" {
		return s.Delete(KeySelectedCharacter)
	}
	return s.Set(KeySelectedCharacter, id)
}

// BotInstalled 报告是否保存了 botInstalled="true"
func (s *Store) BotInstalled() bool {
	value, ok, err := s.Get(KeyBotInstalled)
	if err != nil {
		log.Printf("[Storage] Warning: %v", err)
		return false
	}
	return ok && value == "true"
}

// SetBotInstalled 保存安装状态；false 时删除该键
func (s *Store) SetBotInstalled(installed bool) error {
	if !installed {
		return s.Delete(KeyBotInstalled)
	}
	return s.Set(KeyBotInstalled, "true")
}

// AppendEvent 把事件追加到持久化日志，实现 analytics.Journal
func (s *Store) AppendEvent(event analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadJournalLocked()
	if err != nil {
		return err
	}
	events = append(events, event)
	if len(events) > maxJournalEvents {
		events = events[len(events)-maxJournalEvents:]
	}
	return s.saveJournalLocked(events)
}

// Events 返回持久化日志中的事件
func (s *Store) Events() ([]analytics.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJournalLocked()
}

func (s *Store) loadJournalLocked() ([]analytics.Event, error) {
	if s.gdataManager == nil {
		return append([]analytics.Event(nil), s.journal...), nil
	}
	if !s.gdataManager.ObjectPropExists(journalObject, journalProperty) {
		return nil, nil
	}
	data, err := s.gdataManager.LoadObjectProp(journalObject, journalProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load event journal: %w", err)
	}
	var events []analytics.Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		// 损坏的日志从空开始，下一次保存会覆盖它
		log.Printf("[Storage] Warning: Failed to unmarshal event journal: %v (starting empty)", err)
		return nil, nil
	}
	return events, nil
}

func (s *Store) saveJournalLocked(events []analytics.Event) error {
	if s.gdataManager == nil {
		s.journal = events
		return nil
	}
	data, err := yaml.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal event journal: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(journalObject, journalProperty, data); err != nil {
		return fmt.Errorf("failed to save event journal: %w", err)
	}
	return nil
}
