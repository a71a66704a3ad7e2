package sequencer

import (
	"errors"
	"fmt"
)

// ErrInvalidSequence 时间轴定义错误，属于编程错误
var ErrInvalidSequence = errors.New("sequencer: invalid sequence")

// InvalidSequenceError 指出时间轴中出错的步骤
type InvalidSequenceError struct {
	Index  int // 出错步骤下标，-1 表示整个时间轴
	Reason string
}

func (e *InvalidSequenceError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("sequencer: invalid sequence: %s", e.Reason)
	}
	return fmt.Sprintf("sequencer: invalid sequence: step %d: %s", e.Index, e.Reason)
}

func (e *InvalidSequenceError) Is(target error) bool { return target == ErrInvalidSequence }

// Validate 检查时间轴：非空、首步延迟不为负、延迟严格递增
func Validate(steps []Step) error {
	if len(steps) == 0 {
		return &InvalidSequenceError{Index: -1, Reason: "no steps"}
	}
	if steps[0].Delay < 0 {
		return &InvalidSequenceError{Index: 0, Reason: fmt.Sprintf("negative delay %v", steps[0].Delay)}
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Delay <= steps[i-1].Delay {
			return &InvalidSequenceError{
				Index:  i,
				Reason: fmt.Sprintf("delay %v does not follow %v", steps[i].Delay, steps[i-1].Delay),
			}
		}
	}
	return nil
}

// MustValidate 校验失败时 panic，用于固定的内置时间轴
func MustValidate(steps []Step) []Step {
	if err := Validate(steps); err != nil {
		panic(err)
	}
	return steps
}
