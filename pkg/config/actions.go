package config

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/mangabot/pkg/sequencer"
)

// Effect 时间轴步骤对界面状态的修改
type Effect string

// 支持的步骤效果
const (
	EffectSpeedLinesOn  Effect = "speed_lines_on"
	EffectSpeedLinesOff Effect = "speed_lines_off"
	EffectLevelUpOn     Effect = "level_up_on"
	EffectLevelUpOff    Effect = "level_up_off"
	EffectIncrement     Effect = "increment" // 计数器加一，计数器由界面持有
)

// 默认事件名
const DefaultActionEvent = "action_triggered"

var knownEffects = map[Effect]bool{
	EffectSpeedLinesOn:  true,
	EffectSpeedLinesOff: true,
	EffectLevelUpOn:     true,
	EffectLevelUpOff:    true,
	EffectIncrement:     true,
}

// StepConfig 时间轴中的一步
//
// at 使用 Go duration 写法（"0s"、"500ms"、"2.5s"），整数会被 yaml 拒绝。
type StepConfig struct {
	At                time.Duration `yaml:"at"`                // 相对触发时刻的延迟
	Effects           []Effect      `yaml:"effects"`           // 本步要应用的效果
	RequiresCharacter bool          `yaml:"requiresCharacter"` // 未选择角色时跳过本步
}

// Action 一个按钮动作：音效 + 动画时间轴 + 统计事件
type Action struct {
	Name       string       `yaml:"name"`       // 动作名，如 "install"
	Sound      string       `yaml:"sound"`      // 音效 ID（相对音效目录的文件名）
	Volume     float64      `yaml:"volume"`     // 播放音量 [0,1]
	Event      string       `yaml:"event"`      // 统计事件名，默认 action_triggered
	Page       string       `yaml:"page"`       // 所在页面，写入事件负载
	CounterKey string       `yaml:"counterKey"` // 非空时负载中附带 <counterKey>: counter+1
	Steps      []StepConfig `yaml:"steps"`      // 动画时间轴
}

// Sequence 把时间轴转换为 sequencer 步骤，Label 为逗号分隔的效果名
func (a Action) Sequence() []sequencer.Step {
	return StepsToSequence(a.Steps)
}

// StepsToSequence 把步骤配置转换为 sequencer 步骤
func StepsToSequence(steps []StepConfig) []sequencer.Step {
	seq := make([]sequencer.Step, len(steps))
	for i, s := range steps {
		labels := make([]string, len(s.Effects))
		for j, e := range s.Effects {
			labels[j] = string(e)
		}
		seq[i] = sequencer.Step{Delay: s.At, Label: strings.Join(labels, ",")}
	}
	return seq
}

// Validate 校验动作定义，时间轴错误匹配 sequencer.ErrInvalidSequence
func (a Action) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if a.Sound == "" {
		return fmt.Errorf("action %s: sound is required", a.Name)
	}
	if a.Volume < 0 || a.Volume > 1 {
		return fmt.Errorf("action %s: volume must be between 0 and 1, got %v", a.Name, a.Volume)
	}
	if err := sequencer.Validate(a.Sequence()); err != nil {
		return fmt.Errorf("action %s: %w", a.Name, err)
	}
	for i, step := range a.Steps {
		if len(step.Effects) == 0 {
			return fmt.Errorf("action %s, step %d: at least one effect is required", a.Name, i)
		}
		for _, e := range step.Effects {
			if !knownEffects[e] {
				return fmt.Errorf("action %s, step %d: unknown effect %q", a.Name, i, e)
			}
		}
	}
	return nil
}

// ActionSet 动作定义文件（data/actions.yaml）
type ActionSet struct {
	Actions []Action `yaml:"actions"`
}

// Get 按名称查找动作
func (s *ActionSet) Get(name string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// LoadActions 从文件系统读取动作定义
func LoadActions(fsys fs.FS, name string) (*ActionSet, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions file %s: %w", name, err)
	}
	set, err := ParseActions(data)
	if err != nil {
		return nil, fmt.Errorf("invalid actions in %s: %w", name, err)
	}
	return set, nil
}

// ParseActions 解析并校验 YAML 动作定义
func ParseActions(data []byte) (*ActionSet, error) {
	var set ActionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse actions YAML: %w", err)
	}
	if len(set.Actions) == 0 {
		return nil, fmt.Errorf("at least one action is required")
	}

	seen := make(map[string]bool, len(set.Actions))
	for i := range set.Actions {
		a := &set.Actions[i]
		if a.Event == "" {
			a.Event = DefaultActionEvent
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate action %q", a.Name)
		}
		seen[a.Name] = true
	}
	return &set, nil
}

// DefaultActions 内置的 install / summon 时间轴，与 data/actions.yaml 一致
// 内置时间轴写错时直接 panic
func DefaultActions() *ActionSet {
	set := &ActionSet{Actions: []Action{
		{
			Name:   "install",
			Sound:  "demo.mp3",
			Volume: 0.5,
			Event:  "install_clicked",
			Page:   "Home",
			Steps: []StepConfig{
				{At: 0, Effects: []Effect{EffectSpeedLinesOn}},
				{At: 500 * time.Millisecond, Effects: []Effect{EffectLevelUpOn}, RequiresCharacter: true},
				{At: 2 * time.Second, Effects: []Effect{EffectSpeedLinesOff}},
				{At: 3 * time.Second, Effects: []Effect{EffectLevelUpOff}, RequiresCharacter: true},
			},
		},
		{
			Name:       "summon",
			Sound:      "select.mp3",
			Volume:     0.6,
			Event:      "summon_action",
			Page:       "Game",
			CounterKey: "summonCount",
			Steps: []StepConfig{
				{At: 0, Effects: []Effect{EffectSpeedLinesOn, EffectIncrement}},
				{At: 500 * time.Millisecond, Effects: []Effect{EffectLevelUpOn}},
				{At: 1500 * time.Millisecond, Effects: []Effect{EffectSpeedLinesOff}},
				{At: 2500 * time.Millisecond, Effects: []Effect{EffectLevelUpOff}},
			},
		},
	}}
	for _, a := range set.Actions {
		sequencer.MustValidate(a.Sequence())
	}
	return set
}
