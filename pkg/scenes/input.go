package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input 当前帧的键盘和指针输入，测试中可替换
type Input interface {
	// IsKeyJustPressed 按键是否在本帧按下
	IsKeyJustPressed(key ebiten.Key) bool
	// JustTapped 本帧是否有点击或触摸，以及位置（逻辑坐标）
	JustTapped() (x, y int, ok bool)
}

type deviceInput struct{}

func (deviceInput) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// JustTapped 优先检测触摸，其次检测鼠标左键
func (deviceInput) JustTapped() (int, int, bool) {
	if touchIDs := inpututil.AppendJustPressedTouchIDs(nil); len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return x, y, true
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return x, y, true
	}
	return 0, 0, false
}

// Keyboard 读取真实的键盘、鼠标和触摸屏
var Keyboard Input = deviceInput{}

// Rect 可点击区域
type Rect struct {
	X, Y, W, H float32
}

// Contains 点是否落在区域内（含左上边界）
func (r Rect) Contains(x, y int) bool {
	fx, fy := float32(x), float32(y)
	return fx >= r.X && fx < r.X+r.W && fy >= r.Y && fy < r.Y+r.H
}

// Tapped 本帧是否点击了区域
func Tapped(input Input, r Rect) bool {
	x, y, ok := input.JustTapped()
	return ok && r.Contains(x, y)
}

// activated 快捷键或点击任一触发
func activated(input Input, r Rect, keys ...ebiten.Key) bool {
	for _, key := range keys {
		if input.IsKeyJustPressed(key) {
			return true
		}
	}
	return Tapped(input, r)
}

// KeyHint 在桌面端给按钮文字加上快捷键提示
func KeyHint(key, label string) string {
	if IsMobile() {
		return label
	}
	return "[" + key + "] " + label
}
