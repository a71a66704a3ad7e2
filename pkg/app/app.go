// Package app 提供应用的核心包装器
//
// 该包把初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/mangabot/pkg/analytics"
	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/embedded"
	"github.com/decker502/mangabot/pkg/game"
	"github.com/decker502/mangabot/pkg/interaction"
	"github.com/decker502/mangabot/pkg/scenes"
	"github.com/decker502/mangabot/pkg/sound"
	"github.com/decker502/mangabot/pkg/storage"
	"github.com/decker502/mangabot/pkg/wallet"
)

const (
	volumeStep      = 0.1                    // 每次按键调整的音量
	beepBufferDelay = 100 * time.Millisecond // beep 扬声器缓冲时长
)

// navTab 页脚左侧的页面切换区域
var navTab = scenes.Rect{X: 0, Y: config.WindowHeight - 24, W: 140, H: 24}

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Backend 覆盖 data/config.yaml 中的音效后端（"ebiten" 或 "beep"），为空则使用配置文件
	Backend string
	// Watch 监听 data/ 目录，修改 YAML 后重新加载动作和角色（仅开发目录模式）
	Watch bool
	// Wallet 钱包提供方，为 nil 表示环境中没有钱包
	Wallet wallet.Provider
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	sounds       *sound.Cache
	store        *storage.Store
	recorder     *analytics.Recorder
	services     interaction.Services
	appConfig    *config.AppConfig
	watcher      *config.Watcher
	input        scenes.Input
	verbose      bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 或 embedded.InitFromDir() 初始化资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	resources := embedded.FS()

	appConfig, err := config.LoadAppConfig(resources, "data/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("应用配置加载失败: %w", err)
	}
	if cfg.Backend != "" {
		appConfig.Backend = cfg.Backend
	}

	backend, err := newBackend(appConfig, resources)
	if err != nil {
		return nil, fmt.Errorf("音效后端初始化失败: %w", err)
	}
	sounds := sound.NewCache(backend, appConfig.SoundBaseDir)
	log.Printf("[App] Sound backend: %s (%d Hz)", appConfig.Backend, appConfig.SampleRate)

	// 存储不可用时降级为内存模式
	gdataManager, err := storage.Open(appConfig.AppName)
	if err != nil {
		log.Printf("[App] Warning: %v (running without persistence)", err)
		gdataManager = nil
	}
	store := storage.NewStore(gdataManager)

	settings, _ := game.NewSettingsManager(gdataManager)
	settings.BindVolume(sounds)
	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	recorder := analytics.NewRecorder()
	sink := analytics.Multi{recorder, analytics.LogSink{}, analytics.NewJournalSink(store)}

	a := &App{
		sceneManager: game.NewSceneManager(),
		settings:     settings,
		sounds:       sounds,
		store:        store,
		recorder:     recorder,
		appConfig:    appConfig,
		input:        scenes.Keyboard,
		verbose:      cfg.Verbose,
		services: interaction.Services{
			Sounds: sounds,
			Sink:   sink,
			Store:  store,
			Wallet: wallet.New(cfg.Wallet),
		},
	}

	if err := a.loadPages(resources); err != nil {
		return nil, err
	}
	if err := a.sceneManager.SwitchTo(interaction.PageHome); err != nil {
		return nil, err
	}

	// 预加载在后台进行，失败只影响首次播放的延迟
	go func() {
		if err := sounds.PreloadAll(context.Background(), appConfig.Preload...); err != nil {
			log.Printf("[App] Preload incomplete: %v", err)
		}
	}()

	if cfg.Watch {
		a.startWatcher()
	}

	return a, nil
}

// newBackend 根据配置创建音效后端
func newBackend(appConfig *config.AppConfig, resources fs.FS) (sound.Backend, error) {
	switch appConfig.Backend {
	case config.BackendEbiten:
		audioContext := audio.NewContext(appConfig.SampleRate)
		return sound.NewEbitenBackend(audioContext, resources), nil
	case config.BackendBeep:
		return sound.NewBeepBackend(resources, appConfig.SampleRate, beepBufferDelay)
	}
	return nil, fmt.Errorf("unknown sound backend %q", appConfig.Backend)
}

// loadPages 读取动作和角色，创建两个页面并注册到场景管理器
// 热重载时再次调用，已注册的页面会被替换
func (a *App) loadPages(resources fs.FS) error {
	actions, err := config.LoadActions(resources, a.appConfig.ActionsFile)
	if err != nil {
		return fmt.Errorf("动作配置加载失败: %w", err)
	}
	characters, err := config.LoadCharacters(resources, a.appConfig.CharactersFile)
	if err != nil {
		return fmt.Errorf("角色配置加载失败: %w", err)
	}

	install, ok := actions.Get("install")
	if !ok {
		return fmt.Errorf("动作配置缺少 install")
	}
	summon, ok := actions.Get("summon")
	if !ok {
		return fmt.Errorf("动作配置缺少 summon")
	}

	services := a.services
	services.Characters = characters

	home, err := interaction.NewHomePage(services, install)
	if err != nil {
		return err
	}
	gamePage, err := interaction.NewGamePage(services, summon)
	if err != nil {
		return err
	}
	gamePage.OnNavigate = a.navigate

	a.sceneManager.Register(interaction.PageHome, scenes.NewHomeScene(home, resources, a.input))
	a.sceneManager.Register(interaction.PageGame, scenes.NewGameScene(gamePage, resources, a.input))
	log.Printf("[App] Loaded %d actions and %d characters", len(actions.Actions), characters.Len())
	return nil
}

func (a *App) navigate(page string) {
	if err := a.sceneManager.SwitchTo(page); err != nil {
		log.Printf("[App] %v", err)
	}
}

// startWatcher 在开发目录模式下监听 data/
func (a *App) startWatcher() {
	root := embedded.RootDir()
	if root == "" {
		log.Printf("[App] Watch ignored: resources are embedded")
		return
	}
	w, err := config.NewWatcher(filepath.Join(root, "data"))
	if err != nil {
		log.Printf("[App] Watch disabled: %v", err)
		return
	}
	a.watcher = w
	log.Printf("[App] Watching %s for changes", filepath.Join(root, "data"))
}

// reload 重新加载动作和角色，失败时保留当前页面
func (a *App) reload(changed []string) {
	log.Printf("[App] Config changed: %v", changed)
	if err := a.loadPages(embedded.FS()); err != nil {
		log.Printf("[App] Reload failed, keeping previous config: %v", err)
		return
	}
	a.navigate(a.sceneManager.Current())
}

// Update 更新应用逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	a.handleGlobalKeys()

	if a.watcher != nil {
		if changed := a.watcher.Poll(); len(changed) > 0 {
			a.reload(changed)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
	} else {
		ebiten.SetFullscreen(true)
		a.settings.SetFullscreen(true)
	}
	a.saveSettings()
}

// handleGlobalKeys 导航栏和音量按键
func (a *App) handleGlobalKeys() {
	if a.input.IsKeyJustPressed(ebiten.KeyTab) || scenes.Tapped(a.input, navTab) {
		next := interaction.PageGame
		if a.sceneManager.Current() == interaction.PageGame {
			next = interaction.PageHome
		}
		a.navigate(next)
	}

	switch {
	case a.input.IsKeyJustPressed(ebiten.KeyEqual):
		a.settings.AdjustSoundVolume(volumeStep)
		a.saveSettings()
	case a.input.IsKeyJustPressed(ebiten.KeyMinus):
		a.settings.AdjustSoundVolume(-volumeStep)
		a.saveSettings()
	case a.input.IsKeyJustPressed(ebiten.KeyM):
		a.settings.SetSoundEnabled(!a.settings.GetSettings().SoundEnabled)
		a.saveSettings()
	}

	if a.verbose && a.input.IsKeyJustPressed(ebiten.KeyF9) {
		log.Printf("[App] Debug report:\n%s", a.debugReport())
	}
}

// debugReport 已记录的事件和音效缓存状态
func (a *App) debugReport() string {
	var b strings.Builder
	if data, err := a.recorder.Export(); err == nil {
		b.WriteString("events:\n")
		b.Write(data)
	}
	if a.sounds != nil {
		b.WriteString("sounds:\n")
		for _, h := range a.sounds.Handles() {
			fmt.Fprintf(&b, "  %s: %s\n", h.ID, h.Status)
		}
	}
	return b.String()
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)

	s := a.settings.GetSettings()
	status := fmt.Sprintf("%s | Sound %d%% [-/+] | [M] %s",
		scenes.KeyHint("Tab", otherPage(a.sceneManager.Current())), int(s.SoundVolume*100+0.5), muteLabel(s.SoundEnabled))
	ebitenutil.DebugPrintAt(screen, status, 10, config.WindowHeight-20)
	ebitenutil.DebugPrintAt(screen, "Experimental demo. No real blockchain transactions are made.", 400, config.WindowHeight-20)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}

// Close 停止监听、释放音效并保存设置
// 在 ebiten.RunGame 返回后调用
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.sounds.Clear()
	return a.settings.Save()
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Recorder 返回内存事件记录器
func (a *App) Recorder() *analytics.Recorder {
	return a.recorder
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

func otherPage(current string) string {
	if current == interaction.PageGame {
		return interaction.PageHome
	}
	return interaction.PageGame
}

func muteLabel(enabled bool) string {
	if enabled {
		return "mute"
	}
	return "unmute"
}
