package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one page of the app (home, game).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Enterable 是一个可选接口，场景每次被切换为当前场景时调用 OnEnter
//
// 页面在这里记录访问事件并重新读取保存的状态。
type Enterable interface {
	OnEnter()
}
