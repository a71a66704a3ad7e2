// Package sequencer 按时间轴驱动一组延迟状态变化
//
// 一个时间轴（[]Step）描述 "开始后 X 毫秒做什么"，由 Sequencer 的虚拟时钟驱动。
// 时钟只在 Update/Advance 时前进，和游戏主循环的 deltaTime 节拍一致，
// 因此测试不需要真实计时器。
//
// 同一个 id 上再次 Run 会取消仍在进行的旧时间轴：旧时间轴剩余的步骤不再回调，
// 新时间轴从零开始。
//
// Thread Safety Note:
// Sequencer 不是线程安全的，应只在游戏主循环所在的 goroutine 上使用。
package sequencer

import (
	"fmt"
	"log"
	"math"
	"time"
)

// Step 时间轴中的一步
type Step struct {
	Delay time.Duration // 相对时间轴开始的延迟
	Label string        // 步骤名称，仅用于日志和调试
}

// StepFunc 每一步到期时的回调
type StepFunc func(index int, step Step)

// State 时间轴运行状态
type State int

const (
	// StatePending 仍有未触发的步骤
	StatePending State = iota
	// StateCompleted 所有步骤已触发
	StateCompleted
	// StateCancelled 被取消或被同 id 的新运行取代
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Run 一次时间轴运行
type Run struct {
	id     string
	steps  []Step
	onStep StepFunc
	start  time.Duration // 在 Sequencer 时钟上的开始时间
	next   int           // 下一个待触发步骤的下标
	state  State
	owner  *Sequencer
}

// ID 返回运行所属的 id
func (r *Run) ID() string { return r.id }

// State 返回当前状态
func (r *Run) State() State { return r.state }

// Fired 返回已触发的步骤数
func (r *Run) Fired() int { return r.next }

// Done 报告运行是否已结束（完成或取消）
func (r *Run) Done() bool { return r.state != StatePending }

// Cancel 立即取消运行，剩余步骤不再回调；对已结束的运行无效
func (r *Run) Cancel() {
	if r.state != StatePending {
		return
	}
	r.state = StateCancelled
	r.owner.release(r)
}

// Sequencer 时间轴调度器
type Sequencer struct {
	now  time.Duration
	runs []*Run // 按开始顺序排列的进行中运行
}

// New 创建调度器，时钟从零开始
func New() *Sequencer {
	return &Sequencer{}
}

// Now 返回虚拟时钟当前时间
func (s *Sequencer) Now() time.Duration {
	return s.now
}

// Run 在 id 上启动时间轴
//
// steps 必须非空且延迟严格递增，否则返回 *InvalidSequenceError。
// 如果 id 上已有进行中的运行，先取消它。延迟为零的步骤在返回前立即触发。
func (s *Sequencer) Run(id string, steps []Step, onStep StepFunc) (*Run, error) {
	if err := Validate(steps); err != nil {
		return nil, err
	}
	if onStep == nil {
		onStep = func(int, Step) {}
	}

	if prev := s.Active(id); prev != nil {
		prev.Cancel()
		log.Printf("[Sequencer] %s: superseded run after %d/%d steps", id, prev.next, len(prev.steps))
	}

	run := &Run{
		id:     id,
		steps:  append([]Step(nil), steps...),
		onStep: onStep,
		start:  s.now,
		state:  StatePending,
		owner:  s,
	}
	s.runs = append(s.runs, run)

	s.fire(run)
	return run, nil
}

// Update 按主循环节拍推进时钟
// deltaTime 是距上一帧的时间（秒）
func (s *Sequencer) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}
	s.Advance(time.Duration(math.Round(deltaTime * float64(time.Second))))
}

// Advance 推进时钟并触发所有到期的步骤
// 同一次推进中多个运行按启动顺序处理，每个运行内部按步骤顺序处理
func (s *Sequencer) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	s.now += d

	// 回调中可能启动或取消运行，遍历快照
	runs := append([]*Run(nil), s.runs...)
	for _, run := range runs {
		s.fire(run)
	}
}

// Active 返回 id 上进行中的运行，没有时返回 nil
func (s *Sequencer) Active(id string) *Run {
	for _, run := range s.runs {
		if run.id == id && run.state == StatePending {
			return run
		}
	}
	return nil
}

// Pending 返回进行中的运行数量
func (s *Sequencer) Pending() int {
	return len(s.runs)
}

// CancelAll 取消所有进行中的运行
func (s *Sequencer) CancelAll() {
	for _, run := range append([]*Run(nil), s.runs...) {
		run.Cancel()
	}
}

// fire 触发 run 所有已到期的步骤
func (s *Sequencer) fire(run *Run) {
	for run.state == StatePending && run.next < len(run.steps) {
		step := run.steps[run.next]
		if run.start+step.Delay > s.now {
			return
		}
		index := run.next
		run.next++
		s.invoke(run, index, step)
	}

	if run.state == StatePending && run.next == len(run.steps) {
		run.state = StateCompleted
		s.release(run)
	}
}

// invoke 调用步骤回调，回调 panic 只影响当前步骤
func (s *Sequencer) invoke(run *Run, index int, step Step) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Sequencer] %s: step %d (%s) panicked: %v", run.id, index, step.Label, r)
		}
	}()
	run.onStep(index, step)
}

// release 从进行中列表移除 run
func (s *Sequencer) release(run *Run) {
	for i, r := range s.runs {
		if r == run {
			s.runs = append(s.runs[:i], s.runs[i+1:]...)
			return
		}
	}
}

// String 便于日志输出
func (r *Run) String() string {
	return fmt.Sprintf("%s[%s %d/%d]", r.id, r.state, r.next, len(r.steps))
}
