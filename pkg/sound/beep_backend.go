package sound

import (
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// beepResampleQuality beep.Resample 的插值质量
const beepResampleQuality = 4

// BeepBackend 使用 gopxl/beep 扬声器播放音效
//
// 每个文件解码后保存在 beep.Buffer 中；每次 Play 从缓冲区开头创建新的流，
// 经过音量效果和 beep.Ctrl 后交给扬声器混音。
type BeepBackend struct {
	fsys       fs.FS
	sampleRate beep.SampleRate
}

// NewBeepBackend 初始化扬声器并创建 beep 后端
// bufferLatency 是扬声器缓冲时长，越小延迟越低、CPU 占用越高
func NewBeepBackend(fsys fs.FS, sampleRate int, bufferLatency time.Duration) (*BeepBackend, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(bufferLatency)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return newBeepBackend(fsys, sr), nil
}

// NewBeepDecoder 创建不初始化扬声器的 beep 后端
// 只用于 Preload 校验资源能否解码（例如 cmd/check_assets），不能用来播放
func NewBeepDecoder(fsys fs.FS, sampleRate int) *BeepBackend {
	return newBeepBackend(fsys, beep.SampleRate(sampleRate))
}

func newBeepBackend(fsys fs.FS, sampleRate beep.SampleRate) *BeepBackend {
	return &BeepBackend{
		fsys:       fsys,
		sampleRate: sampleRate,
	}
}

// Load 读取并解码音效文件到内存缓冲
func (b *BeepBackend) Load(path string) (Player, error) {
	buffer, err := b.decode(path)
	if err != nil {
		return nil, err
	}
	return &beepPlayer{
		buffer:     buffer,
		sampleRate: b.sampleRate,
		volume:     1.0,
	}, nil
}

func (b *BeepBackend) decode(path string) (*beep.Buffer, error) {
	file, err := b.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound effect file %s: %w", path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".ogg":
		streamer, format, err = vorbis.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	default:
		file.Close()
		return nil, fmt.Errorf("%w: %s (supported: .mp3, .ogg, .wav)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to decode sound effect %s: %w", path, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to buffer sound effect %s: %w", path, err)
	}
	return buffer, nil
}

// beepPlayer 播放一个已缓冲的音效
//
// playing 和 generation 会被扬声器 goroutine 上的完成回调访问，所以用原子变量；
// ctrl 只在持有 speaker.Lock 时修改。
type beepPlayer struct {
	buffer     *beep.Buffer
	sampleRate beep.SampleRate
	volume     float64

	ctrl       *beep.Ctrl
	playing    atomic.Bool
	generation atomic.Uint64
}

func (p *beepPlayer) IsPlaying() bool {
	return p.playing.Load()
}

// Play 总是从缓冲区开头开始播放
func (p *beepPlayer) Play() error {
	gen := p.generation.Add(1)

	var stream beep.Streamer = p.buffer.Streamer(0, p.buffer.Len())
	if from := p.buffer.Format().SampleRate; from != p.sampleRate {
		stream = beep.Resample(beepResampleQuality, from, p.sampleRate, stream)
	}
	stream = &effects.Volume{
		Streamer: stream,
		Base:     2,
		Volume:   math.Log2(math.Max(p.volume, 1e-6)),
		Silent:   p.volume <= 0,
	}
	ctrl := &beep.Ctrl{Streamer: stream}

	speaker.Lock()
	p.ctrl = ctrl
	speaker.Unlock()

	p.playing.Store(true)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		// 只有最新一次播放结束时才清除标志
		if p.generation.Load() == gen {
			p.playing.Store(false)
		}
	})))
	return nil
}

// Pause 把流从混音器中摘除
func (p *beepPlayer) Pause() {
	speaker.Lock()
	if p.ctrl != nil {
		p.ctrl.Streamer = nil
		p.ctrl = nil
	}
	speaker.Unlock()
	p.playing.Store(false)
}

// Rewind 每次 Play 都从头创建新流，无需额外操作
func (p *beepPlayer) Rewind() error {
	return nil
}

func (p *beepPlayer) SetVolume(volume float64) {
	p.volume = clampVolume(volume)
}

func (p *beepPlayer) Close() error {
	p.Pause()
	return nil
}
