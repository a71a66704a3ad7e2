// Package sound 管理短音效的播放缓存
//
// 每个音效标识（通常是文件名）最多对应一个 Player。重复播放同一音效时先停止
// 并回到开头再播放，避免快速连点造成的音频叠加。加载失败的 Player 会被移出
// 缓存，下一次 Play 会重新构造。
package sound

import (
	"context"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status 音效句柄的播放状态
type Status int

const (
	// StatusIdle 已加载，未在播放
	StatusIdle Status = iota
	// StatusPlaying 正在播放
	StatusPlaying
	// StatusErrored 最近一次播放失败
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusErrored:
		return "errored"
	}
	return "unknown"
}

// preloadConcurrency PreloadAll 同时解码的最大文件数
const preloadConcurrency = 4

// entry 缓存中的一个音效句柄
// mu 串行化同一标识上的所有操作；evicted 表示已被移出缓存，持有者需要重新获取
type entry struct {
	mu      sync.Mutex
	player  Player
	status  Status
	evicted bool
}

// Handle 是音效句柄的只读快照
type Handle struct {
	ID     string
	Status Status
}

// Cache 音效播放缓存
//
// 可以被多个 goroutine 并发调用：不同标识互不阻塞，同一标识上的调用按到达顺序串行执行。
// 锁顺序：entry.mu 可以在持有时获取 Cache.mu，反之不允许。
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	backend Backend
	baseDir string
	master  float64
}

// NewCache 创建音效缓存
//
// 参数：
//   - backend: 音频后端，用于按路径构造 Player
//   - baseDir: 音效目录，为空时使用 DefaultBaseDir
func NewCache(backend Backend, baseDir string) *Cache {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return &Cache{
		entries: make(map[string]*entry),
		backend: backend,
		baseDir: baseDir,
		master:  1.0,
	}
}

// Play 播放音效，播放开始后返回（不等待播放结束）
//
// 音量会被限制在 0.0 ~ 1.0，再乘以主音量。
// 如果该音效正在播放，先暂停并回到开头，保证重复触发时干净地重新开始。
//
// 返回：
//   - error: 失败时为 *PlaybackError。加载失败会把句柄移出缓存，下次调用重新构造
func (c *Cache) Play(id string, volume float64) error {
	if id == "" {
		return &PlaybackError{ID: id, Err: ErrEmptyID}
	}

	e := c.acquire(id, true)
	defer e.mu.Unlock()

	if e.player == nil {
		player, err := c.load(id)
		if err != nil {
			c.evictLocked(id, e)
			log.Printf("[SoundCache] Warning: Failed to load %s: %v", id, err)
			return &PlaybackError{ID: id, Err: err}
		}
		e.player = player
	}

	// 正在播放时先停止，再从头开始；播放完毕的句柄同样需要回到开头
	if e.player.IsPlaying() {
		e.player.Pause()
	}
	if err := e.player.Rewind(); err != nil {
		e.status = StatusErrored
		log.Printf("[SoundCache] Warning: Failed to rewind %s: %v", id, err)
		return &PlaybackError{ID: id, Err: err}
	}

	e.player.SetVolume(clampVolume(volume) * c.MasterVolume())

	if err := e.player.Play(); err != nil {
		e.status = StatusErrored
		log.Printf("[SoundCache] Warning: Play failed for %s: %v", id, err)
		return &PlaybackError{ID: id, Err: err}
	}

	e.status = StatusPlaying
	return nil
}

// Preload 构造并完整解码音效，但不播放
// 已缓存时直接返回 nil；失败时返回 *PreloadError，缓存中不会留下该标识
func (c *Cache) Preload(id string) error {
	if id == "" {
		return &PreloadError{ID: id, Err: ErrEmptyID}
	}

	e := c.acquire(id, true)
	defer e.mu.Unlock()

	if e.player != nil {
		return nil
	}

	player, err := c.load(id)
	if err != nil {
		c.evictLocked(id, e)
		log.Printf("[SoundCache] Warning: Preload failed for %s: %v", id, err)
		return &PreloadError{ID: id, Err: err}
	}
	e.player = player
	e.status = StatusIdle
	return nil
}

// PreloadAll 并发预加载多个音效，返回第一个错误
// 其余音效仍会继续加载完成，成功的会留在缓存中
func (c *Cache) PreloadAll(ctx context.Context, ids ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return &PreloadError{ID: id, Err: err}
			}
			return c.Preload(id)
		})
	}

	err := g.Wait()
	log.Printf("[SoundCache] Preloaded %d sounds (cached: %d)", len(ids), c.Len())
	return err
}

// Stop 停止音效并回到开头；未缓存或未播放时什么都不做
func (c *Cache) Stop(id string) {
	e := c.acquire(id, false)
	if e == nil {
		return
	}
	defer e.mu.Unlock()

	if e.player == nil {
		return
	}
	if e.player.IsPlaying() {
		e.player.Pause()
		if err := e.player.Rewind(); err != nil {
			log.Printf("[SoundCache] Warning: Failed to rewind %s: %v", id, err)
		}
	}
	e.status = StatusIdle
}

// Clear 停止并释放所有句柄，清空缓存
// 仅在完整退出时调用
func (c *Cache) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	for id, e := range entries {
		e.mu.Lock()
		if e.player != nil {
			if e.player.IsPlaying() {
				e.player.Pause()
			}
			if err := e.player.Close(); err != nil {
				log.Printf("[SoundCache] Warning: Failed to close %s: %v", id, err)
			}
			e.player = nil
		}
		e.evicted = true
		e.mu.Unlock()
	}

	log.Printf("[SoundCache] Cleared %d sounds", len(entries))
}

// Status 返回音效当前状态；未缓存时第二个返回值为 false
func (c *Cache) Status(id string) (Status, bool) {
	e := c.acquire(id, false)
	if e == nil {
		return StatusIdle, false
	}
	defer e.mu.Unlock()

	if e.player == nil {
		return StatusIdle, false
	}
	return e.refresh(), true
}

// Handles 返回所有缓存句柄的快照，按标识排序
func (c *Cache) Handles() []Handle {
	c.mu.Lock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	slices.Sort(ids)

	handles := make([]Handle, 0, len(ids))
	for _, id := range ids {
		if status, ok := c.Status(id); ok {
			handles = append(handles, Handle{ID: id, Status: status})
		}
	}
	return handles
}

// Len 返回缓存中的句柄数量
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetMasterVolume 设置主音量，影响之后的 Play 调用
func (c *Cache) SetMasterVolume(volume float64) {
	c.mu.Lock()
	c.master = clampVolume(volume)
	c.mu.Unlock()
}

// MasterVolume 返回当前主音量
func (c *Cache) MasterVolume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.master
}

// acquire 返回已加锁、仍在缓存中的 entry
// create 为 false 且标识不存在时返回 nil
func (c *Cache) acquire(id string, create bool) *entry {
	for {
		c.mu.Lock()
		e, ok := c.entries[id]
		if !ok {
			if !create {
				c.mu.Unlock()
				return nil
			}
			e = &entry{}
			c.entries[id] = e
		}
		c.mu.Unlock()

		e.mu.Lock()
		if !e.evicted {
			return e
		}
		// 等待期间被移出缓存（加载失败或 Clear），重新获取
		e.mu.Unlock()
	}
}

// evictLocked 把 entry 移出缓存，调用方必须持有 e.mu
func (c *Cache) evictLocked(id string, e *entry) {
	e.evicted = true
	c.mu.Lock()
	if c.entries[id] == e {
		delete(c.entries, id)
	}
	c.mu.Unlock()
}

func (c *Cache) load(id string) (Player, error) {
	player, err := c.backend.Load(AssetPath(c.baseDir, id))
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrUnsupportedFormat
	}
	return player, nil
}

// refresh 播放自然结束后把状态从 playing 修正为 idle，调用方必须持有 e.mu
func (e *entry) refresh() Status {
	if e.status == StatusPlaying && !e.player.IsPlaying() {
		e.status = StatusIdle
	}
	return e.status
}
