package sound

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// EbitenBackend 使用 Ebitengine 音频上下文构造 Player
//
// 资源从 fsys 读取（嵌入资源或磁盘目录），按扩展名解码为 PCM 并整体保存在内存中，
// 因此 Load 成功后即可无缓冲播放。
// 支持的格式：MP3 (.mp3)、OGG Vorbis (.ogg)、WAV (.wav)。
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	backend := sound.NewEbitenBackend(audioContext, embedded.FS())
//	cache := sound.NewCache(backend, sound.DefaultBaseDir)
type EbitenBackend struct {
	context *audio.Context
	fsys    fs.FS
}

// NewEbitenBackend 创建 Ebitengine 音频后端
// audioContext 全局只能创建一次，应在程序启动时创建后注入
func NewEbitenBackend(audioContext *audio.Context, fsys fs.FS) *EbitenBackend {
	return &EbitenBackend{
		context: audioContext,
		fsys:    fsys,
	}
}

// Load 读取并解码音效文件
func (b *EbitenBackend) Load(path string) (Player, error) {
	data, err := fs.ReadFile(b.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound effect file %s: %w", path, err)
	}

	pcm, err := decodePCM(path, data, b.context.SampleRate())
	if err != nil {
		return nil, err
	}

	return &ebitenPlayer{
		context: b.context,
		player:  b.context.NewPlayerFromBytes(pcm),
	}, nil
}

// decodePCM 按扩展名解码为目标采样率的 16 位 PCM
func decodePCM(path string, data []byte, sampleRate int) ([]byte, error) {
	reader := bytes.NewReader(data)

	var stream io.Reader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		decoded, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 sound effect %s: %w", path, err)
		}
		stream = decoded
	case ".ogg":
		decoded, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG sound effect %s: %w", path, err)
		}
		stream = decoded
	case ".wav":
		decoded, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV sound effect %s: %w", path, err)
		}
		stream = decoded
	default:
		return nil, fmt.Errorf("%w: %s (supported: .mp3, .ogg, .wav)", ErrUnsupportedFormat, ext)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer sound effect %s: %w", path, err)
	}
	return pcm, nil
}

// ebitenPlayer 包装 *audio.Player
type ebitenPlayer struct {
	context *audio.Context
	player  *audio.Player
}

func (p *ebitenPlayer) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Play 音频上下文未就绪时（浏览器需要用户交互后才能出声）返回 ErrNotReady
func (p *ebitenPlayer) Play() error {
	if !p.context.IsReady() {
		return ErrNotReady
	}
	p.player.Play()
	return nil
}

func (p *ebitenPlayer) Pause() {
	p.player.Pause()
}

func (p *ebitenPlayer) Rewind() error {
	return p.player.Rewind()
}

func (p *ebitenPlayer) SetVolume(volume float64) {
	p.player.SetVolume(volume)
}

func (p *ebitenPlayer) Close() error {
	return p.player.Close()
}
