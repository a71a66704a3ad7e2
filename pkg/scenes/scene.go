// Package scenes 实现两个页面的 ebiten 场景：绘制界面并把键盘和点击输入转交给页面流程
package scenes

import (
	"image/color"

	"github.com/decker502/mangabot/pkg/game"
)

const (
	// WindowWidth is the logical width of the window in pixels.
	WindowWidth = 800
	// WindowHeight is the logical height of the window in pixels.
	WindowHeight = 600
)

// Scene is a type alias for game.Scene.
type Scene = game.Scene

// 漫画风格配色
var (
	paperColor     = color.RGBA{R: 250, G: 246, B: 235, A: 255}
	inkColor       = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	panelColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	highlightColor = color.RGBA{R: 255, G: 214, B: 0, A: 255}
	buyColor       = color.RGBA{R: 46, G: 204, B: 113, A: 255}
	alertColor     = color.RGBA{R: 231, G: 76, B: 60, A: 255}
	infoColor      = color.RGBA{R: 52, G: 152, B: 219, A: 255}
	speedLineColor = color.RGBA{R: 20, G: 20, B: 20, A: 90}
	levelUpColor   = color.RGBA{R: 255, G: 60, B: 60, A: 235}
)
