package sequencer

import (
	"errors"
	"testing"
	"time"
)

// recorder 记录回调顺序
type recorder struct {
	calls []string
}

func (r *recorder) fn(prefix string) StepFunc {
	return func(index int, step Step) {
		r.calls = append(r.calls, prefix+":"+step.Label)
	}
}

func summonSteps() []Step {
	return []Step{
		{Delay: 0, Label: "speed_on"},
		{Delay: 500 * time.Millisecond, Label: "level_up_on"},
		{Delay: 1500 * time.Millisecond, Label: "speed_off"},
		{Delay: 2500 * time.Millisecond, Label: "level_up_off"},
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestValidate 测试时间轴校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
		index   int
	}{
		{name: "valid", steps: summonSteps()},
		{name: "single delayed step", steps: []Step{{Delay: time.Second}}},
		{name: "empty", steps: nil, wantErr: true, index: -1},
		{name: "negative first", steps: []Step{{Delay: -time.Millisecond}}, wantErr: true, index: 0},
		{name: "equal delays", steps: []Step{{Delay: 0}, {Delay: 0}}, wantErr: true, index: 1},
		{name: "decreasing", steps: []Step{{Delay: 0}, {Delay: 2 * time.Second}, {Delay: time.Second}}, wantErr: true, index: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.steps)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSequence) {
				t.Fatalf("Validate() error = %v, want ErrInvalidSequence", err)
			}
			var seqErr *InvalidSequenceError
			if !errors.As(err, &seqErr) || seqErr.Index != tt.index {
				t.Errorf("error index = %v, want %d", err, tt.index)
			}
		})
	}
}

// TestRunInvalidSequence 测试非法时间轴立即失败
func TestRunInvalidSequence(t *testing.T) {
	s := New()
	run, err := s.Run("summon", []Step{{Delay: time.Second}, {Delay: 0}}, nil)
	if run != nil || !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("Run() = %v, %v, want nil, ErrInvalidSequence", run, err)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

// TestMustValidatePanics 测试 MustValidate 对非法时间轴 panic
func TestMustValidatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustValidate did not panic")
		}
	}()
	MustValidate(nil)
}

// TestUpdateFrameTiming 测试 60 TPS 下 500ms 的步骤在第 30 帧触发
func TestUpdateFrameTiming(t *testing.T) {
	s := New()
	rec := &recorder{}
	if _, err := s.Run("summon", summonSteps(), rec.fn("a")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for i := 0; i < 29; i++ {
		s.Update(1.0 / 60.0)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("step fired before frame 30: %v", rec.calls)
	}

	s.Update(1.0 / 60.0)
	if !equal(rec.calls, []string{"a:speed_on", "a:level_up_on"}) {
		t.Errorf("calls at frame 30 = %v (clock %v)", rec.calls, s.Now())
	}
}

// TestRunFiresInOrder 测试每一步按顺序恰好触发一次
func TestRunFiresInOrder(t *testing.T) {
	s := New()
	rec := &recorder{}

	run, err := s.Run("summon", summonSteps(), rec.fn("a"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// 零延迟步骤立即触发
	if !equal(rec.calls, []string{"a:speed_on"}) {
		t.Fatalf("calls after Run = %v", rec.calls)
	}

	s.Advance(499 * time.Millisecond)
	if len(rec.calls) != 1 {
		t.Errorf("step fired early: %v", rec.calls)
	}

	s.Advance(time.Millisecond)
	if !equal(rec.calls, []string{"a:speed_on", "a:level_up_on"}) {
		t.Errorf("calls at 500ms = %v", rec.calls)
	}

	// 以游戏帧节拍推进
	for i := 0; i < 300; i++ {
		s.Update(1.0 / 60.0)
	}

	want := []string{"a:speed_on", "a:level_up_on", "a:speed_off", "a:level_up_off"}
	if !equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if run.State() != StateCompleted {
		t.Errorf("State() = %v, want completed", run.State())
	}
	if run.Fired() != 4 {
		t.Errorf("Fired() = %d, want 4", run.Fired())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}

	// 完成后继续推进不会重复触发
	s.Advance(10 * time.Second)
	if len(rec.calls) != 4 {
		t.Errorf("steps fired again: %v", rec.calls)
	}
}

// TestRunLargeDelta 测试一次大跨度推进按顺序触发所有到期步骤
func TestRunLargeDelta(t *testing.T) {
	s := New()
	rec := &recorder{}
	if _, err := s.Run("install", summonSteps(), rec.fn("a")); err != nil {
		t.Fatal(err)
	}

	s.Advance(time.Minute)

	want := []string{"a:speed_on", "a:level_up_on", "a:speed_off", "a:level_up_off"}
	if !equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

// TestRunSupersede 测试同 id 再次运行会取消旧运行
func TestRunSupersede(t *testing.T) {
	s := New()
	rec := &recorder{}

	first, _ := s.Run("summon", summonSteps(), rec.fn("first"))
	s.Advance(300 * time.Millisecond)
	second, _ := s.Run("summon", summonSteps(), rec.fn("second"))

	if first.State() != StateCancelled {
		t.Errorf("first.State() = %v, want cancelled", first.State())
	}
	if s.Active("summon") != second {
		t.Error("Active() did not return the new run")
	}

	s.Advance(5 * time.Second)

	want := []string{
		"first:speed_on",
		"second:speed_on",
		"second:level_up_on",
		"second:speed_off",
		"second:level_up_off",
	}
	if !equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if second.State() != StateCompleted {
		t.Errorf("second.State() = %v, want completed", second.State())
	}
}

// TestRunSupersedeTimeline 测试新运行的时间轴从取代时刻开始计算
func TestRunSupersedeTimeline(t *testing.T) {
	s := New()
	rec := &recorder{}

	s.Run("summon", summonSteps(), rec.fn("first"))
	s.Advance(400 * time.Millisecond)
	s.Run("summon", summonSteps(), rec.fn("second"))

	// 距第一次运行 500ms，但距第二次只有 100ms
	s.Advance(100 * time.Millisecond)
	if len(rec.calls) != 2 {
		t.Errorf("calls = %v, want only the two speed_on steps", rec.calls)
	}

	s.Advance(400 * time.Millisecond)
	if rec.calls[len(rec.calls)-1] != "second:level_up_on" {
		t.Errorf("calls = %v, want second:level_up_on last", rec.calls)
	}
}

// TestRunIndependentIDs 测试不同 id 互不影响
func TestRunIndependentIDs(t *testing.T) {
	s := New()
	rec := &recorder{}

	install, _ := s.Run("install", summonSteps(), rec.fn("install"))
	summon, _ := s.Run("summon", summonSteps(), rec.fn("summon"))

	if install.State() != StatePending || summon.State() != StatePending {
		t.Fatal("runs on different ids must both be pending")
	}
	s.Advance(3 * time.Second)

	if len(rec.calls) != 8 {
		t.Errorf("calls = %v, want 8", rec.calls)
	}
	if install.State() != StateCompleted || summon.State() != StateCompleted {
		t.Error("both runs should complete")
	}
}

// TestRunCancel 测试取消后剩余步骤不再回调
func TestRunCancel(t *testing.T) {
	s := New()
	rec := &recorder{}

	run, _ := s.Run("install", summonSteps(), rec.fn("a"))
	s.Advance(600 * time.Millisecond)
	run.Cancel()
	run.Cancel() // 幂等

	s.Advance(5 * time.Second)

	if !equal(rec.calls, []string{"a:speed_on", "a:level_up_on"}) {
		t.Errorf("calls = %v", rec.calls)
	}
	if run.State() != StateCancelled || !run.Done() {
		t.Errorf("State() = %v, want cancelled", run.State())
	}
	if s.Active("install") != nil {
		t.Error("Active() returned a cancelled run")
	}
}

// TestRunCancelAll 测试取消全部运行
func TestRunCancelAll(t *testing.T) {
	s := New()
	a, _ := s.Run("a", summonSteps(), nil)
	b, _ := s.Run("b", summonSteps(), nil)

	s.CancelAll()

	if a.State() != StateCancelled || b.State() != StateCancelled {
		t.Error("CancelAll did not cancel every run")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

// TestRunStepPanicIsolated 测试单步 panic 不影响后续步骤
func TestRunStepPanicIsolated(t *testing.T) {
	s := New()
	var fired []int

	run, err := s.Run("summon", summonSteps(), func(index int, step Step) {
		fired = append(fired, index)
		if index == 1 {
			panic("boom")
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Advance(3 * time.Second)

	if len(fired) != 4 {
		t.Errorf("fired = %v, want all 4 steps", fired)
	}
	if run.State() != StateCompleted {
		t.Errorf("State() = %v, want completed", run.State())
	}
}

// TestRunSupersedeFromCallback 测试回调中重新启动同 id 的运行
func TestRunSupersedeFromCallback(t *testing.T) {
	s := New()
	rec := &recorder{}
	restarted := false

	var first *Run
	first, _ = s.Run("loop", summonSteps(), func(index int, step Step) {
		rec.calls = append(rec.calls, "first:"+step.Label)
		if index == 1 && !restarted {
			restarted = true
			s.Run("loop", []Step{{Delay: 0, Label: "restart"}}, rec.fn("second"))
		}
	})

	s.Advance(time.Second)

	if first.State() != StateCancelled {
		t.Errorf("first.State() = %v, want cancelled", first.State())
	}
	want := []string{"first:speed_on", "first:level_up_on", "second:restart"}
	if !equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

// TestUpdateIgnoresNonPositive 测试非正 deltaTime 不推进时钟
func TestUpdateIgnoresNonPositive(t *testing.T) {
	s := New()
	s.Update(0)
	s.Update(-1)
	s.Advance(-time.Second)
	if s.Now() != 0 {
		t.Errorf("Now() = %v, want 0", s.Now())
	}
	s.Update(0.5)
	if s.Now() != 500*time.Millisecond {
		t.Errorf("Now() = %v, want 500ms", s.Now())
	}
}

// TestStateString 测试状态名称
func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StatePending:   "pending",
		StateCompleted: "completed",
		StateCancelled: "cancelled",
		State(9):       "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
