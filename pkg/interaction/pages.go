package interaction

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/decker502/mangabot/pkg/analytics"
	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/sequencer"
	"github.com/decker502/mangabot/pkg/wallet"
)

// 页面名称
const (
	PageHome = "Home"
	PageGame = "Game"
)

// 页面上的固定音效
const (
	selectSound   = "select.mp3"
	selectVolume  = 0.5
	connectSound  = "chin-chin.mp3"
	connectVolume = 0.5

	// clickSound 每个按钮按下时的音效，可用按钮才会播放
	clickSound  = "chin-chin.mp3"
	clickVolume = 0.4
)

// ErrUnknownCharacter 角色不在角色列表中
var ErrUnknownCharacter = errors.New("interaction: unknown character")

// StateStore 持久化的页面状态，*storage.Store 实现了该接口
type StateStore interface {
	SelectedCharacter() (string, bool)
	SetSelectedCharacter(id string) error
	BotInstalled() bool
	SetBotInstalled(installed bool) error
}

// WalletService 钱包连接，*wallet.Wallet 实现了该接口
type WalletService interface {
	Connect(ctx context.Context) wallet.Result
	Address(ctx context.Context) wallet.Result
	IsConnected(ctx context.Context) wallet.Status
	Disconnect()
}

// Services 页面共用的外部服务
type Services struct {
	Sounds     SoundPlayer
	Sink       analytics.Sink
	Store      StateStore           // 为 nil 时不持久化
	Wallet     WalletService        // 为 nil 时视为没有钱包
	Characters *config.CharacterSet // 为 nil 时使用内置角色
}

func (s Services) withDefaults() Services {
	if s.Wallet == nil {
		s.Wallet = wallet.New(nil)
	}
	if s.Characters == nil {
		s.Characters = config.DefaultCharacters()
	}
	return s
}

// playSound 播放页面音效，失败时记录 error 事件后继续
func (s Services) playSound(id string, volume float64) {
	if s.Sounds == nil {
		return
	}
	if err := s.Sounds.Play(id, volume); err != nil {
		log.Printf("[Page] Sound %s failed: %v", id, err)
		analytics.TrackError(s.Sink, err.Error(), map[string]any{"sound": id})
	}
}

// click 按钮按下的反馈音
func (s Services) click() {
	s.playSound(clickSound, clickVolume)
}

func (s Services) loadCharacter() string {
	if s.Store == nil {
		return ""
	}
	id, ok := s.Store.SelectedCharacter()
	if !ok {
		return ""
	}
	if _, known := s.Characters.Find(id); !known {
		log.Printf("[Page] Ignoring unknown saved character %q", id)
		return ""
	}
	return id
}

// HomePage 首页：选择角色、连接钱包、安装机器人
type HomePage struct {
	svc     Services
	install *Controller

	character     string
	installed     bool
	walletAddress string
	walletError   string
}

// NewHomePage 创建首页，install 为安装按钮的动作定义
func NewHomePage(svc Services, install config.Action) (*HomePage, error) {
	svc = svc.withDefaults()
	controller, err := NewController(install, Deps{Sounds: svc.Sounds, Sink: svc.Sink})
	if err != nil {
		return nil, fmt.Errorf("install action: %w", err)
	}
	return &HomePage{svc: svc, install: controller}, nil
}

// Enter 进入首页：恢复保存的状态、检查钱包、记录访问
func (p *HomePage) Enter(ctx context.Context) {
	p.install.Cancel()
	p.character = p.svc.loadCharacter()
	p.installed = p.svc.Store != nil && p.svc.Store.BotInstalled()
	p.walletAddress = ""
	p.walletError = ""

	if status := p.svc.Wallet.IsConnected(ctx); status.OK && status.Connected {
		p.walletAddress = status.Address
	}

	analytics.TrackPageView(p.svc.Sink, PageHome, nil)
}

// SelectCharacter 选择角色：播放音效、保存、记录事件
func (p *HomePage) SelectCharacter(id string) error {
	if _, ok := p.svc.Characters.Find(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCharacter, id)
	}

	p.svc.playSound(selectSound, selectVolume)
	p.character = id

	if p.svc.Store != nil {
		if err := p.svc.Store.SetSelectedCharacter(id); err != nil {
			log.Printf("[Home] Failed to save character: %v", err)
		}
	}

	analytics.SafeRecord(p.svc.Sink, analytics.EventCharacterSelected, map[string]any{
		"characterId": id,
		"page":        PageHome,
	})
	return nil
}

// Install 触发安装动画；已选择角色时保存安装状态
func (p *HomePage) Install() *sequencer.Run {
	p.svc.click()
	run := p.install.Trigger(p.context())

	if p.character != "" {
		p.installed = true
		if p.svc.Store != nil {
			if err := p.svc.Store.SetBotInstalled(true); err != nil {
				log.Printf("[Home] Failed to save install state: %v", err)
			}
		}
	}
	log.Printf("[Home] Bot install triggered for character: %s", characterOrNone(p.character))
	return run
}

// ConnectWallet 连接钱包，成功时播放音效
func (p *HomePage) ConnectWallet(ctx context.Context) wallet.Result {
	p.svc.click()
	res := p.svc.Wallet.Connect(ctx)
	if !res.OK {
		p.walletError = res.Error
		analytics.SafeRecord(p.svc.Sink, analytics.EventWalletFailed, map[string]any{"error": res.Error})
		return res
	}

	p.svc.playSound(connectSound, connectVolume)
	p.walletAddress = res.Address
	p.walletError = ""
	analytics.SafeRecord(p.svc.Sink, analytics.EventWalletConnected, map[string]any{"address": res.Address})
	return res
}

// DisconnectWallet 断开钱包
func (p *HomePage) DisconnectWallet() {
	p.svc.click()
	p.svc.Wallet.Disconnect()
	p.walletAddress = ""
	p.walletError = ""
	analytics.SafeRecord(p.svc.Sink, analytics.EventWalletDisconnect, nil)
}

// Update 推进安装动画
func (p *HomePage) Update(deltaTime float64) {
	p.install.Update(deltaTime)
}

// Character 当前选择的角色 ID，未选择时为空
func (p *HomePage) Character() string { return p.character }

// Installed 是否已安装机器人
func (p *HomePage) Installed() bool { return p.installed }

// WalletAddress 已连接的钱包地址
func (p *HomePage) WalletAddress() string { return p.walletAddress }

// WalletError 最近一次连接失败的提示
func (p *HomePage) WalletError() string { return p.walletError }

// Overlay 安装动画状态
func (p *HomePage) Overlay() Overlay { return p.install.Overlay() }

// Characters 可选角色
func (p *HomePage) Characters() []config.Character { return p.svc.Characters.Characters }

func (p *HomePage) context() Context {
	return Context{CharacterID: p.character, WalletConnected: p.walletAddress != ""}
}

// GamePage 游戏页：召唤、升级动画、返回首页
type GamePage struct {
	svc    Services
	summon *Controller

	character     string
	installed     bool
	walletAddress string
	summonCount   int

	// OnNavigate 请求切换页面
	OnNavigate func(page string)
}

// NewGamePage 创建游戏页，summon 为召唤按钮的动作定义
func NewGamePage(svc Services, summon config.Action) (*GamePage, error) {
	svc = svc.withDefaults()
	controller, err := NewController(summon, Deps{Sounds: svc.Sounds, Sink: svc.Sink})
	if err != nil {
		return nil, fmt.Errorf("summon action: %w", err)
	}
	p := &GamePage{svc: svc, summon: controller}
	controller.OnIncrement = func() { p.summonCount++ }
	return p, nil
}

// Enter 进入游戏页：记录访问、读取钱包地址和保存的状态
// 计数器从零开始
func (p *GamePage) Enter(ctx context.Context) {
	p.summon.Cancel()
	p.summonCount = 0

	analytics.TrackPageView(p.svc.Sink, PageGame, nil)

	p.walletAddress = ""
	if res := p.svc.Wallet.Address(ctx); res.OK {
		p.walletAddress = res.Address
	}
	p.character = p.svc.loadCharacter()
	p.installed = p.svc.Store != nil && p.svc.Store.BotInstalled()
}

// Summon 触发召唤；未选择角色时按钮不可用，返回 nil
func (p *GamePage) Summon() *sequencer.Run {
	if !p.CanSummon() {
		log.Printf("[Game] Summon ignored: no character selected")
		return nil
	}
	p.svc.click()
	return p.summon.Trigger(Context{
		CharacterID:     p.character,
		Counter:         p.summonCount,
		WalletConnected: p.walletAddress != "",
	})
}

// BackToHome 记录事件并请求返回首页
func (p *GamePage) BackToHome() {
	p.svc.click()
	analytics.SafeRecord(p.svc.Sink, analytics.EventBackToHome, map[string]any{"page": PageGame})
	if p.OnNavigate != nil {
		p.OnNavigate(PageHome)
	}
}

// Update 推进召唤动画
func (p *GamePage) Update(deltaTime float64) {
	p.summon.Update(deltaTime)
}

// CanSummon 是否可以召唤
func (p *GamePage) CanSummon() bool { return p.character != "" }

// Level 当前等级，等于召唤次数加一
func (p *GamePage) Level() int { return p.summonCount + 1 }

// SummonCount 本次进入页面后的召唤次数
func (p *GamePage) SummonCount() int { return p.summonCount }

// Character 保存的角色，未选择时 ok 为 false
func (p *GamePage) Character() (config.Character, bool) {
	if p.character == "" {
		return config.Character{}, false
	}
	return p.svc.Characters.Find(p.character)
}

// Characters 可选角色
func (p *GamePage) Characters() []config.Character { return p.svc.Characters.Characters }

// Installed 是否已安装机器人
func (p *GamePage) Installed() bool { return p.installed }

// WalletAddress 钱包地址，未连接时为空
func (p *GamePage) WalletAddress() string { return p.walletAddress }

// Overlay 召唤动画状态
func (p *GamePage) Overlay() Overlay { return p.summon.Overlay() }

func characterOrNone(id string) string {
	if id == "" {
		return "none"
	}
	return id
}
