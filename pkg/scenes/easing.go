package scenes

import "math"

// levelUpPopDuration LEVEL UP 面板弹出的时长（秒）
const levelUpPopDuration = 0.25

// easeOutBack 缓出并略微越过终点，f(0)=0，f(1)=1
func easeOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

// lerp 在 a 和 b 之间按 t 插值
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// popScale 面板出现 age 秒后的缩放比例，从 0.5 弹到 1
func popScale(age float64) float64 {
	t := math.Min(math.Max(age/levelUpPopDuration, 0), 1)
	return lerp(0.5, 1, easeOutBack(t))
}
