package sound

import (
	"path"
	"strings"
)

// Player 是一个可播放的音频资源（对应一个 SoundHandle 持有的媒体）
//
// 实现只会被 Cache 在持有该标识的锁时调用，不需要自带同步。
type Player interface {
	// IsPlaying 报告当前是否正在播放
	IsPlaying() bool
	// Play 从当前位置开始播放，返回时播放已经开始
	Play() error
	// Pause 暂停播放，保留位置
	Pause()
	// Rewind 将播放位置重置到开头
	Rewind() error
	// SetVolume 设置音量 (0.0 ~ 1.0)
	SetVolume(volume float64)
	// Close 释放底层资源
	Close() error
}

// Backend 根据资源路径构造 Player
//
// Load 必须完整读取并解码资源，返回的 Player 可以立即无缓冲播放，
// 因此 Load 成功即等价于 "can play through"。
type Backend interface {
	Load(path string) (Player, error)
}

// BackendFunc 让普通函数满足 Backend 接口
type BackendFunc func(path string) (Player, error)

// Load 调用 f(path)
func (f BackendFunc) Load(path string) (Player, error) {
	return f(path)
}

// DefaultBaseDir 音效资源的默认目录
const DefaultBaseDir = "assets/sounds"

// AssetPath 按 "<baseDir>/<id>" 约定拼接资源路径
func AssetPath(baseDir, id string) string {
	return path.Join(strings.TrimSuffix(baseDir, "/"), id)
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume != volume { // NaN
		return 0.0
	}
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
