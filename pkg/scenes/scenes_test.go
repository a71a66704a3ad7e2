package scenes

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"testing/fstest"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/mangabot/pkg/analytics"
	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/interaction"
	"github.com/decker502/mangabot/pkg/storage"
	"github.com/decker502/mangabot/pkg/wallet"
)

// fakeInput 保持按下状态直到下一次 press、tap 或 release
type fakeInput struct {
	pressed map[ebiten.Key]bool
	tapped  bool
	x, y    int
}

func newFakeInput() *fakeInput {
	return &fakeInput{pressed: make(map[ebiten.Key]bool)}
}

func (f *fakeInput) IsKeyJustPressed(key ebiten.Key) bool {
	return f.pressed[key]
}

func (f *fakeInput) JustTapped() (int, int, bool) {
	return f.x, f.y, f.tapped
}

func (f *fakeInput) press(keys ...ebiten.Key) {
	f.release()
	for _, k := range keys {
		f.pressed[k] = true
	}
}

// tap 点击区域中心
func (f *fakeInput) tap(r Rect) {
	f.release()
	f.tapped = true
	f.x = int(r.X + r.W/2)
	f.y = int(r.Y + r.H/2)
}

func (f *fakeInput) release() {
	f.pressed = make(map[ebiten.Key]bool)
	f.tapped = false
}

type silentSounds struct{ plays int }

func (s *silentSounds) Play(string, float64) error {
	s.plays++
	return nil
}

type fixture struct {
	rec      *analytics.Recorder
	store    *storage.Store
	sounds   *silentSounds
	services interaction.Services
}

func newFixture() *fixture {
	f := &fixture{
		rec:    analytics.NewRecorder(),
		store:  storage.NewStore(nil),
		sounds: &silentSounds{},
	}
	f.services = interaction.Services{
		Sounds: f.sounds,
		Sink:   f.rec,
		Store:  f.store,
		Wallet: wallet.New(wallet.NewStaticProvider(1, "0x1111111111222222222233333333334444444444")),
	}
	return f
}

func (f *fixture) home(t *testing.T, input Input) *HomeScene {
	t.Helper()
	install, _ := config.DefaultActions().Get("install")
	page, err := interaction.NewHomePage(f.services, install)
	if err != nil {
		t.Fatalf("NewHomePage() failed: %v", err)
	}
	return NewHomeScene(page, nil, input)
}

func (f *fixture) game(t *testing.T, input Input) (*GameScene, *interaction.GamePage) {
	t.Helper()
	summon, _ := config.DefaultActions().Get("summon")
	page, err := interaction.NewGamePage(f.services, summon)
	if err != nil {
		t.Fatalf("NewGamePage() failed: %v", err)
	}
	return NewGameScene(page, nil, input), page
}

// TestHomeSceneInput 测试首页按键
func TestHomeSceneInput(t *testing.T) {
	f := newFixture()
	input := newFakeInput()
	scene := f.home(t, input)

	scene.OnEnter()
	if got := len(f.rec.EventsByName(analytics.EventPageView)); got != 1 {
		t.Errorf("got %d page views, want 1", got)
	}

	input.press(ebiten.KeyDigit2)
	scene.Update(1.0 / 60)
	if got := scene.page.Character(); got != "cyber-human" {
		t.Errorf("got character %q, want cyber-human", got)
	}

	input.press(installKey)
	scene.Update(1.0 / 60)
	if !scene.page.Overlay().SpeedLines {
		t.Error("install should start speed lines")
	}
	if !f.store.BotInstalled() {
		t.Error("install with character should be persisted")
	}

	input.press(walletKey)
	scene.Update(1.0 / 60)
	if scene.page.WalletAddress() == "" {
		t.Error("first W press should connect the wallet")
	}
	input.press(walletKey)
	scene.Update(1.0 / 60)
	if scene.page.WalletAddress() != "" {
		t.Error("second W press should disconnect the wallet")
	}

	// 没有对应角色的数字键被忽略
	input.press(ebiten.KeyDigit4)
	scene.Update(1.0 / 60)
	if got := scene.page.Character(); got != "cyber-human" {
		t.Errorf("got character %q, want cyber-human", got)
	}
}

// TestGameSceneInput 测试游戏页按键
func TestGameSceneInput(t *testing.T) {
	f := newFixture()
	input := newFakeInput()
	scene, page := f.game(t, input)

	var navigated string
	page.OnNavigate = func(name string) { navigated = name }

	scene.OnEnter()
	input.press(summonKey)
	scene.Update(1.0 / 60)
	if page.SummonCount() != 0 {
		t.Error("summon without character should be ignored")
	}

	f.store.SetSelectedCharacter("red-girl")
	scene.OnEnter()
	scene.Update(1.0 / 60)
	if page.SummonCount() != 1 {
		t.Errorf("got summon count %d, want 1", page.SummonCount())
	}

	input.release()
	scene.Update(0.5)
	if !page.Overlay().LevelUp {
		t.Error("level up should show 500ms after summon")
	}

	input.press(ebiten.KeyEscape)
	scene.Update(1.0 / 60)
	if navigated != interaction.PageHome {
		t.Errorf("navigated to %q, want %s", navigated, interaction.PageHome)
	}
}

// TestHomeSceneTap 测试首页点击
func TestHomeSceneTap(t *testing.T) {
	f := newFixture()
	input := newFakeInput()
	scene := f.home(t, input)
	scene.OnEnter()

	input.tap(characterCard(0))
	scene.Update(1.0 / 60)
	if got := scene.page.Character(); got != "red-girl" {
		t.Errorf("got character %q, want red-girl", got)
	}

	input.tap(walletButton)
	scene.Update(1.0 / 60)
	if scene.page.WalletAddress() == "" {
		t.Error("tapping the wallet button should connect")
	}

	input.tap(installButton)
	scene.Update(1.0 / 60)
	if !f.store.BotInstalled() {
		t.Error("tapping install should persist the install flag")
	}

	// 空白处点击不触发任何操作
	plays := f.sounds.plays
	input.tap(Rect{X: 700, Y: 500, W: 10, H: 10})
	scene.Update(1.0 / 60)
	if f.sounds.plays != plays {
		t.Errorf("got %d sound plays, want %d", f.sounds.plays, plays)
	}
}

// TestGameSceneTap 测试游戏页点击
func TestGameSceneTap(t *testing.T) {
	f := newFixture()
	f.store.SetSelectedCharacter("cyber-human")
	input := newFakeInput()
	scene, page := f.game(t, input)

	var navigated string
	page.OnNavigate = func(name string) { navigated = name }
	scene.OnEnter()

	input.tap(summonButton)
	scene.Update(1.0 / 60)
	if page.SummonCount() != 1 {
		t.Errorf("got summon count %d, want 1", page.SummonCount())
	}

	input.tap(backButton)
	scene.Update(1.0 / 60)
	if navigated != interaction.PageHome {
		t.Errorf("navigated to %q, want %s", navigated, interaction.PageHome)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}
	tests := []struct {
		x, y int
		want bool
	}{
		{10, 20, true},
		{109, 69, true},
		{110, 30, false},
		{50, 70, false},
		{9, 30, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

// TestPopScale 测试 LEVEL UP 弹出缩放
func TestPopScale(t *testing.T) {
	if got := popScale(0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("popScale(0) = %v, want 0.5", got)
	}
	if got := popScale(levelUpPopDuration); math.Abs(got-1) > 1e-9 {
		t.Errorf("popScale(end) = %v, want 1", got)
	}
	if got := popScale(10); math.Abs(got-1) > 1e-9 {
		t.Errorf("popScale after end = %v, want 1", got)
	}
	// 中途越过 1
	if got := popScale(levelUpPopDuration * 0.7); got <= 1 {
		t.Errorf("popScale midway = %v, want overshoot above 1", got)
	}

	var clock levelUpClock
	clock.update(interaction.Overlay{LevelUp: true}, 0.1)
	clock.update(interaction.Overlay{LevelUp: true}, 0.1)
	if math.Abs(clock.age-0.2) > 1e-9 {
		t.Errorf("got age %v, want 0.2", clock.age)
	}
	clock.update(interaction.Overlay{}, 0.1)
	if clock.age != 0 {
		t.Errorf("got age %v after hide, want 0", clock.age)
	}
}

// TestLevelSubtitle 测试游戏页 LEVEL UP 副标题显示召唤后的等级
func TestLevelSubtitle(t *testing.T) {
	f := newFixture()
	f.store.SetSelectedCharacter("red-girl")
	scene, page := f.game(t, newFakeInput())
	scene.OnEnter()

	page.Summon()
	if got := levelSubtitle(page.Overlay()); got != "Level 2" {
		t.Errorf("got %q after first summon, want Level 2", got)
	}
	page.Summon()
	if got := levelSubtitle(page.Overlay()); got != "Level 3" {
		t.Errorf("got %q after second summon, want Level 3", got)
	}
	if installedSubtitle != "Bot installed successfully!" {
		t.Errorf("got install subtitle %q", installedSubtitle)
	}
}

// TestScenesDraw 测试绘制不 panic
func TestScenesDraw(t *testing.T) {
	f := newFixture()
	input := newFakeInput()
	screen := ebiten.NewImage(WindowWidth, WindowHeight)

	home := f.home(t, input)
	home.OnEnter()
	home.Draw(screen)
	home.page.SelectCharacter("red-girl")
	home.page.Install()
	home.Update(0.5)
	home.Draw(screen)

	game, page := f.game(t, input)
	game.OnEnter()
	game.Draw(screen)
	page.Summon()
	game.Update(0.5)
	game.Draw(screen)
}

// TestLoadPortraits 测试头像加载
func TestLoadPortraits(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}

	fsys := fstest.MapFS{"assets/images/redgirl.png": {Data: buf.Bytes()}}
	portraits := loadPortraits(fsys, config.DefaultCharacters().Characters)

	if _, ok := portraits["red-girl"]; !ok {
		t.Error("red-girl portrait should load")
	}
	if _, ok := portraits["cyber-human"]; ok {
		t.Error("missing cyber-human portrait should be skipped")
	}

	if got := loadPortraits(nil, config.DefaultCharacters().Characters); len(got) != 0 {
		t.Errorf("nil file system should load nothing, got %d", len(got))
	}
}
