package scenes

import (
	"context"
	"fmt"
	_ "image/png"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/interaction"
	"github.com/decker502/mangabot/pkg/wallet"
)

// 首页按键
var (
	characterKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}
	installKey    = ebiten.KeyI
	walletKey     = ebiten.KeyW
)

// 首页可点击区域
var (
	walletButton  = Rect{X: WindowWidth - 220, Y: 120, W: 180, H: 40}
	installButton = Rect{X: 40, Y: 440, W: 220, H: 50}
)

// installedSubtitle 安装完成时 LEVEL UP 面板的副标题
const installedSubtitle = "Bot installed successfully!"

// 角色卡片尺寸
const cardW, cardH = 220, 220

// characterCard 第 i 张角色卡片的区域
func characterCard(i int) Rect {
	return Rect{X: float32(40 + i*(cardW+40)), Y: 190, W: cardW, H: cardH}
}

// HomeScene 首页：钱包、角色选择、安装按钮
type HomeScene struct {
	page      *interaction.HomePage
	input     Input
	ctx       context.Context
	portraits map[string]*ebiten.Image
	levelUp   levelUpClock
}

// NewHomeScene creates the home page scene.
//
// Parameters:
//   - page: the home page flow driven by this scene.
//   - images: file system holding the character portraits; nil skips portraits.
//   - input: keyboard and pointer source, scenes.Keyboard in the app.
func NewHomeScene(page *interaction.HomePage, images fs.FS, input Input) *HomeScene {
	return &HomeScene{
		page:      page,
		input:     input,
		ctx:       context.Background(),
		portraits: loadPortraits(images, page.Characters()),
	}
}

// OnEnter 实现 game.Enterable
func (s *HomeScene) OnEnter() {
	s.page.Enter(s.ctx)
}

// Update 处理按键和点击，推进安装动画
func (s *HomeScene) Update(deltaTime float64) {
	characters := s.page.Characters()
	for i, key := range characterKeys {
		if i < len(characters) && activated(s.input, characterCard(i), key) {
			if err := s.page.SelectCharacter(characters[i].ID); err != nil {
				log.Printf("[HomeScene] %v", err)
			}
		}
	}

	if activated(s.input, installButton, installKey) {
		s.page.Install()
	}

	if activated(s.input, walletButton, walletKey) {
		if s.page.WalletAddress() == "" {
			s.page.ConnectWallet(s.ctx)
		} else {
			s.page.DisconnectWallet()
		}
	}

	s.page.Update(deltaTime)
	s.levelUp.update(s.page.Overlay(), deltaTime)
}

// Draw 绘制首页
func (s *HomeScene) Draw(screen *ebiten.Image) {
	screen.Fill(paperColor)

	drawPanel(screen, 20, 20, WindowWidth-40, 70, panelColor)
	ebitenutil.DebugPrintAt(screen, "MANGA BOT GAME", 40, 35)
	ebitenutil.DebugPrintAt(screen, "Choose your character, connect your wallet, and install your bot!", 40, 58)

	s.drawWallet(screen)
	s.drawCharacters(screen)
	s.drawInstall(screen)

	drawOverlay(screen, s.page.Overlay(), s.levelUp, installedSubtitle)
}

func (s *HomeScene) drawWallet(screen *ebiten.Image) {
	drawPanel(screen, 20, 110, WindowWidth-40, 60, panelColor)

	status := "Wallet not connected"
	label, fill := KeyHint("W", "Connect Wallet"), buyColor
	if addr := s.page.WalletAddress(); addr != "" {
		status = "Wallet connected: " + wallet.ShortenAddress(addr)
		label, fill = KeyHint("W", "Disconnect"), alertColor
	}
	ebitenutil.DebugPrintAt(screen, status, 40, 122)
	if msg := s.page.WalletError(); msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 40, 144)
	}
	drawButton(screen, walletButton, label, fill, false)
}

func (s *HomeScene) drawCharacters(screen *ebiten.Image) {
	selected := s.page.Character()

	for i, c := range s.page.Characters() {
		if i >= len(characterKeys) {
			break
		}
		card := characterCard(i)
		x, y := card.X, card.Y

		fill := panelColor
		if c.ID == selected {
			fill = highlightColor
		}
		drawPanel(screen, x, y, cardW, cardH, fill)

		if img, ok := s.portraits[c.ID]; ok {
			op := &ebiten.DrawImageOptions{}
			b := img.Bounds()
			scale := min(float64(cardW-20)/float64(b.Dx()), 130/float64(b.Dy()))
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(float64(x)+10, float64(y)+10)
			screen.DrawImage(img, op)
		}

		ebitenutil.DebugPrintAt(screen, KeyHint(fmt.Sprint(i+1), c.Name), int(x)+10, int(y)+150)
		ebitenutil.DebugPrintAt(screen, c.Description, int(x)+10, int(y)+172)
		if c.ID == selected {
			ebitenutil.DebugPrintAt(screen, "SELECTED!", int(x)+10, int(y)+194)
		}
	}
}

func (s *HomeScene) drawInstall(screen *ebiten.Image) {
	label := KeyHint("I", "Install Bot")
	if s.page.Overlay().Active {
		label = KeyHint("I", "Installing...")
	}
	drawButton(screen, installButton, label, infoColor, false)

	if s.page.Character() == "" {
		ebitenutil.DebugPrintAt(screen, "Select a character first for the full experience!", 280, 457)
	} else if s.page.Installed() {
		ebitenutil.DebugPrintAt(screen, "Bot installed. Open the Game page to summon.", 280, 457)
	}
}

// loadPortraits 加载角色头像，缺失的头像只记录日志
func loadPortraits(images fs.FS, characters []config.Character) map[string]*ebiten.Image {
	portraits := make(map[string]*ebiten.Image)
	if images == nil {
		return portraits
	}
	for _, c := range characters {
		if c.Image == "" {
			continue
		}
		img, _, err := ebitenutil.NewImageFromFileSystem(images, c.Image)
		if err != nil {
			log.Printf("[Scenes] Portrait for %s unavailable: %v", c.ID, err)
			continue
		}
		portraits[c.ID] = img
	}
	return portraits
}
