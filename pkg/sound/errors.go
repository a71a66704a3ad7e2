package sound

import (
	"errors"
	"fmt"
)

var (
	// ErrPlayback 播放失败（解码失败、音频上下文未就绪、资源缺失）
	ErrPlayback = errors.New("sound: playback failed")
	// ErrPreload 预加载失败（资源无法完整缓冲）
	ErrPreload = errors.New("sound: preload failed")
	// ErrEmptyID 音效标识为空
	ErrEmptyID = errors.New("sound: empty identifier")
	// ErrNotReady 音频上下文尚未就绪，对应浏览器的自动播放策略拒绝
	ErrNotReady = errors.New("sound: audio context not ready")
	// ErrUnsupportedFormat 不支持的音频格式
	ErrUnsupportedFormat = errors.New("sound: unsupported audio format")
)

// PlaybackError 描述一次失败的 Play 调用
type PlaybackError struct {
	ID  string
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("sound: play %s: %v", e.ID, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrPlayback) 成立
func (e *PlaybackError) Is(target error) bool { return target == ErrPlayback }

// PreloadError 描述一次失败的 Preload 调用
type PreloadError struct {
	ID  string
	Err error
}

func (e *PreloadError) Error() string {
	return fmt.Sprintf("sound: preload %s: %v", e.ID, e.Err)
}

func (e *PreloadError) Unwrap() error { return e.Err }

func (e *PreloadError) Is(target error) bool { return target == ErrPreload }
