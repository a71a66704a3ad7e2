//go:build !mobile

package scenes

import "os"

// IsMobile 是否在移动设备上运行
// 设置环境变量 MANGABOT_MOBILE_EMULATE=1 可在桌面端模拟移动模式
func IsMobile() bool {
	return os.Getenv("MANGABOT_MOBILE_EMULATE") == "1"
}
