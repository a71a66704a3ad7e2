package scenes

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/decker502/mangabot/pkg/interaction"
	"github.com/decker502/mangabot/pkg/wallet"
)

// 游戏页按键
var (
	summonKey = ebiten.KeySpace
	backKeys  = []ebiten.Key{ebiten.KeyEscape, ebiten.KeyBackspace}
)

// 游戏页可点击区域
var (
	summonButton = Rect{X: 40, Y: 470, W: 220, H: 50}
	backButton   = Rect{X: 300, Y: 470, W: 220, H: 50}
)

// GameScene 游戏页：角色面板、钱包状态、召唤按钮
type GameScene struct {
	page      *interaction.GamePage
	input     Input
	ctx       context.Context
	portraits map[string]*ebiten.Image
	levelUp   levelUpClock
}

// NewGameScene creates the game page scene.
// images may be nil, in which case portraits are drawn as empty frames.
func NewGameScene(page *interaction.GamePage, images fs.FS, input Input) *GameScene {
	return &GameScene{
		page:      page,
		input:     input,
		ctx:       context.Background(),
		portraits: loadPortraits(images, page.Characters()),
	}
}

// OnEnter 实现 game.Enterable
func (s *GameScene) OnEnter() {
	s.page.Enter(s.ctx)
}

// Update 处理按键和点击，推进召唤动画
func (s *GameScene) Update(deltaTime float64) {
	if activated(s.input, summonButton, summonKey) {
		s.page.Summon()
	}
	if activated(s.input, backButton, backKeys...) {
		s.page.BackToHome()
	}
	s.page.Update(deltaTime)
	s.levelUp.update(s.page.Overlay(), deltaTime)
}

// Draw 绘制游戏页
func (s *GameScene) Draw(screen *ebiten.Image) {
	screen.Fill(paperColor)

	drawPanel(screen, 20, 20, WindowWidth-40, 50, panelColor)
	ebitenutil.DebugPrintAt(screen, "GAME ZONE", 40, 37)

	s.drawCharacter(screen)
	s.drawStatus(screen)

	drawButton(screen, summonButton, KeyHint("Space", "Summon"), buyColor, !s.page.CanSummon())
	drawButton(screen, backButton, KeyHint("Esc", "Back to Home"), infoColor, false)
	ebitenutil.DebugPrintAt(screen, "Summon to level up your character! Each summon triggers an epic animation.", 40, 540)

	drawOverlay(screen, s.page.Overlay(), s.levelUp, levelSubtitle(s.page.Overlay()))
}

func (s *GameScene) drawCharacter(screen *ebiten.Image) {
	const x, y, w, h = 40, 90, 340, 360
	drawPanel(screen, x, y, w, h, panelColor)

	c, ok := s.page.Character()
	if !ok {
		ebitenutil.DebugPrintAt(screen, "No character selected.", x+20, y+20)
		ebitenutil.DebugPrintAt(screen, "Please go back to Home and select a character.", x+20, y+40)
		return
	}

	if img, found := s.portraits[c.ID]; found {
		op := &ebiten.DrawImageOptions{}
		b := img.Bounds()
		scale := min(float64(w-40)/float64(b.Dx()), 240/float64(b.Dy()))
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x+20, y+20)
		screen.DrawImage(img, op)
	}
	ebitenutil.DebugPrintAt(screen, c.Name, x+20, y+280)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Level: %d", s.page.Level()), x+20, y+302)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Summons: %d", s.page.SummonCount()), x+20, y+324)
}

func (s *GameScene) drawStatus(screen *ebiten.Image) {
	const x, y, w, h = 420, 90, 340, 160
	drawPanel(screen, x, y, w, h, panelColor)
	ebitenutil.DebugPrintAt(screen, "WALLET STATUS", x+20, y+15)

	if addr := s.page.WalletAddress(); addr != "" {
		ebitenutil.DebugPrintAt(screen, "Connected", x+20, y+45)
		ebitenutil.DebugPrintAt(screen, wallet.ShortenAddress(addr), x+20, y+67)
	} else {
		ebitenutil.DebugPrintAt(screen, "Not connected", x+20, y+45)
		ebitenutil.DebugPrintAt(screen, "Connect on the Home page", x+20, y+67)
	}
	if s.page.Installed() {
		ebitenutil.DebugPrintAt(screen, "BOT INSTALLED", x+20, y+110)
	}
}

// levelSubtitle 召唤后 LEVEL UP 面板显示新的等级
func levelSubtitle(overlay interaction.Overlay) string {
	return fmt.Sprintf("Level %d", overlay.Level)
}
