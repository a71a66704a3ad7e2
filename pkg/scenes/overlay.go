package scenes

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/mangabot/pkg/interaction"
)

// speedLineCount 速度线条数
const speedLineCount = 48

// levelUpClock 记录 LEVEL UP 面板已显示的时长，用于弹出动画
type levelUpClock struct {
	age float64
}

// update 面板隐藏时归零
func (c *levelUpClock) update(overlay interaction.Overlay, deltaTime float64) {
	if !overlay.LevelUp {
		c.age = 0
		return
	}
	c.age += deltaTime
}

// drawOverlay 绘制动画状态：速度线和 LEVEL UP 面板，subtitle 显示在 LEVEL UP 下方
func drawOverlay(screen *ebiten.Image, overlay interaction.Overlay, clock levelUpClock, subtitle string) {
	if overlay.SpeedLines {
		drawSpeedLines(screen)
	}
	if overlay.LevelUp {
		drawLevelUp(screen, subtitle, popScale(clock.age))
	}
}

// drawSpeedLines 从屏幕中心向外的放射线
func drawSpeedLines(screen *ebiten.Image) {
	cx := float32(WindowWidth) / 2
	cy := float32(WindowHeight) / 2
	inner := float32(180)
	outer := float32(WindowWidth)

	for i := 0; i < speedLineCount; i++ {
		angle := 2 * math.Pi * float64(i) / speedLineCount
		dx := float32(math.Cos(angle))
		dy := float32(math.Sin(angle))
		width := float32(2)
		if i%3 == 0 {
			width = 4
		}
		vector.StrokeLine(screen, cx+dx*inner, cy+dy*inner, cx+dx*outer, cy+dy*outer, width, speedLineColor, true)
	}
}

// drawLevelUp LEVEL UP 面板，scale 为弹出动画的缩放比例
func drawLevelUp(screen *ebiten.Image, subtitle string, scale float64) {
	w := float32(260 * scale)
	h := float32(90 * scale)
	x := (WindowWidth - w) / 2
	y := (WindowHeight - h) / 2

	vector.DrawFilledRect(screen, x+6, y+6, w, h, inkColor, false)
	vector.DrawFilledRect(screen, x, y, w, h, levelUpColor, false)
	vector.StrokeRect(screen, x, y, w, h, 3, inkColor, false)

	// 弹出完成前只画面板
	if scale < 0.95 {
		return
	}
	cx, cy := WindowWidth/2, WindowHeight/2
	ebitenutil.DebugPrintAt(screen, "LEVEL UP!", cx-27, cy-20)
	ebitenutil.DebugPrintAt(screen, subtitle, cx-len(subtitle)*3, cy+5)
}

// drawPanel 带阴影和描边的面板
func drawPanel(screen *ebiten.Image, x, y, w, h float32, fill color.Color) {
	vector.DrawFilledRect(screen, x+4, y+4, w, h, inkColor, false)
	vector.DrawFilledRect(screen, x, y, w, h, fill, false)
	vector.StrokeRect(screen, x, y, w, h, 2, inkColor, false)
}

// drawButton 漫画对话框风格按钮，disabled 时灰显
func drawButton(screen *ebiten.Image, r Rect, label string, fill color.Color, disabled bool) {
	if disabled {
		fill = color.RGBA{R: 190, G: 190, B: 190, A: 255}
	}
	drawPanel(screen, r.X, r.Y, r.W, r.H, fill)
	ebitenutil.DebugPrintAt(screen, label, int(r.X)+10, int(r.Y+r.H/2)-8)
}
