package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrUnknownScene 切换到未注册的场景
var ErrUnknownScene = errors.New("game: unknown scene")

// SceneManager manages which page is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	scenes       map[string]Scene
	current      string
	currentScene Scene
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{
		scenes: make(map[string]Scene),
	}
}

// Register 注册具名场景，同名场景会被替换
func (sm *SceneManager) Register(name string, scene Scene) {
	sm.scenes[name] = scene
	if sm.current == name {
		sm.currentScene = scene
	}
}

// SwitchTo 切换到具名场景，实现了 Enterable 的场景会收到 OnEnter
//
// 切换到当前场景也会重新调用 OnEnter，与重新打开页面一致。
func (sm *SceneManager) SwitchTo(name string) error {
	scene, ok := sm.scenes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}

	log.Printf("[SceneManager] 切换场景: %s -> %s", sm.current, name)
	sm.current = name
	sm.currentScene = scene
	if e, ok := scene.(Enterable); ok {
		e.OnEnter()
	}
	return nil
}

// Current 返回当前场景名称，没有活动场景时为空
func (sm *SceneManager) Current() string {
	return sm.current
}

// GetCurrentScene 返回当前活动的场景
//
// 返回：
//   - Scene: 当前场景，如果没有活动场景则返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
// deltaTime is the time elapsed since the last update in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
