// Package interaction 把按钮按下转换为音效、动画时间轴和统计事件
//
// Controller 负责单个动作；HomePage 和 GamePage 组合多个 Controller 和
// 外部服务（存储、钱包），对应两个页面上的全部交互。
package interaction

import (
	"log"

	"github.com/decker502/mangabot/pkg/analytics"
	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/sequencer"
)

// SoundPlayer 播放音效，*sound.Cache 实现了该接口
type SoundPlayer interface {
	Play(id string, volume float64) error
}

// Context 触发动作时的界面状态，只读
type Context struct {
	CharacterID     string // 为空表示未选择角色
	Counter         int    // 界面持有的计数器当前值
	WalletConnected bool
}

// HasCharacter 是否已选择角色
func (c Context) HasCharacter() bool {
	return c.CharacterID != ""
}

// Overlay 界面需要绘制的动画状态
type Overlay struct {
	SpeedLines bool
	LevelUp    bool
	Level      int  // LEVEL UP 面板上显示的等级
	Active     bool // 时间轴仍有未触发的步骤
}

// Deps Controller 的依赖
type Deps struct {
	Sounds SoundPlayer
	Sink   analytics.Sink
}

// Controller 单个动作的交互控制器
//
// 不是并发安全的，和 Sequencer 一样运行在游戏循环的 goroutine 上。
type Controller struct {
	action    config.Action
	sounds    SoundPlayer
	sink      analytics.Sink
	seq       *sequencer.Sequencer
	slot      string
	overlay   Overlay
	listeners []func(Overlay)

	// OnIncrement 在 increment 效果触发时调用，计数器由页面持有
	OnIncrement func()
}

// NewController 创建动作控制器
// 时间轴非法时返回的错误匹配 sequencer.ErrInvalidSequence
func NewController(action config.Action, deps Deps) (*Controller, error) {
	if action.Event == "" {
		action.Event = config.DefaultActionEvent
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		action: action,
		sounds: deps.Sounds,
		sink:   deps.Sink,
		seq:    sequencer.New(),
		slot:   "action:" + action.Name,
	}, nil
}

// Action 返回动作定义
func (c *Controller) Action() config.Action {
	return c.action
}

// Overlay 返回当前动画状态
func (c *Controller) Overlay() Overlay {
	return c.overlay
}

// OnChange 注册动画状态变化的监听
func (c *Controller) OnChange(fn func(Overlay)) {
	c.listeners = append(c.listeners, fn)
}

// Trigger 执行一次动作：播放音效、重新开始动画、记录事件
//
// 三步互不影响：音效失败只记录日志，事件接收方的错误和 panic 会被吞掉。
// 上一次触发的时间轴如果还没结束，会先被取消。
// 返回新的时间轴；所有步骤都被过滤掉时返回 nil。
func (c *Controller) Trigger(ctx Context) *sequencer.Run {
	if c.sounds != nil {
		if err := c.sounds.Play(c.action.Sound, c.action.Volume); err != nil {
			log.Printf("[Controller] %s: sound failed: %v", c.action.Name, err)
		}
	}

	run := c.animate(ctx)

	if err := analytics.SafeRecord(c.sink, c.action.Event, c.payload(ctx)); err != nil {
		log.Printf("[Controller] %s: event dropped: %v", c.action.Name, err)
	}
	return run
}

// Update 推进时间轴，deltaTime 单位为秒
func (c *Controller) Update(deltaTime float64) {
	c.seq.Update(deltaTime)
}

// Cancel 取消正在进行的动画并清空界面状态
func (c *Controller) Cancel() {
	if run := c.seq.Active(c.slot); run != nil {
		run.Cancel()
	}
	c.overlay = Overlay{}
	c.publish()
}

func (c *Controller) animate(ctx Context) *sequencer.Run {
	steps := make([]config.StepConfig, 0, len(c.action.Steps))
	for _, s := range c.action.Steps {
		if s.RequiresCharacter && !ctx.HasCharacter() {
			continue
		}
		steps = append(steps, s)
	}

	c.overlay = Overlay{Level: ctx.Counter + 1, Active: len(steps) > 0}
	if len(steps) == 0 {
		c.Cancel()
		return nil
	}
	c.publish()

	run, err := c.seq.Run(c.slot, config.StepsToSequence(steps), func(index int, _ sequencer.Step) {
		c.apply(steps[index].Effects)
		c.overlay.Active = index < len(steps)-1
		c.publish()
	})
	if err != nil {
		// 步骤来自已校验的动作，过滤后仍然有序
		log.Printf("[Controller] %s: %v", c.action.Name, err)
		return nil
	}
	return run
}

func (c *Controller) apply(effects []config.Effect) {
	for _, e := range effects {
		switch e {
		case config.EffectSpeedLinesOn:
			c.overlay.SpeedLines = true
		case config.EffectSpeedLinesOff:
			c.overlay.SpeedLines = false
		case config.EffectLevelUpOn:
			c.overlay.LevelUp = true
		case config.EffectLevelUpOff:
			c.overlay.LevelUp = false
		case config.EffectIncrement:
			c.overlay.Level++
			if c.OnIncrement != nil {
				c.OnIncrement()
			}
		}
	}
}

func (c *Controller) publish() {
	for _, fn := range c.listeners {
		fn(c.overlay)
	}
}

func (c *Controller) payload(ctx Context) map[string]any {
	characterID := ctx.CharacterID
	if characterID == "" {
		characterID = "none"
	}
	payload := map[string]any{
		"characterId":     characterID,
		"hasCharacter":    ctx.HasCharacter(),
		"walletConnected": ctx.WalletConnected,
	}
	if c.action.Page != "" {
		payload["page"] = c.action.Page
	}
	if c.action.CounterKey != "" {
		payload[c.action.CounterKey] = ctx.Counter + 1
	}
	return payload
}
