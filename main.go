package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/mangabot/pkg/app"
	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/embedded"
	"github.com/decker502/mangabot/pkg/wallet"
)

// 演示钱包所在的链（Base）
const demoChainID = 8453

func main() {
	verbose := flag.Bool("verbose", false, "显示详细调试信息")
	backend := flag.String("backend", "", "音效后端: ebiten 或 beep（默认读取 data/config.yaml）")
	dataDir := flag.String("data", "", "从磁盘目录读取 assets/ 和 data/，而不是使用嵌入资源")
	watch := flag.Bool("watch", false, "修改 data/*.yaml 后自动重新加载（需要 -data）")
	account := flag.String("wallet", "", "演示钱包地址；为空表示没有检测到钱包")
	flag.Parse()

	if *dataDir != "" {
		if err := embedded.InitFromDir(*dataDir); err != nil {
			log.Fatalf("资源目录无效: %v", err)
		}
	} else {
		embedded.Init(assetsFS, dataFS)
	}

	var provider wallet.Provider
	if *account != "" {
		provider = wallet.NewStaticProvider(demoChainID, *account)
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Backend: *backend,
		Watch:   *watch,
		Wallet:  provider,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Manga Bot Game")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		log.Printf("关闭时保存设置失败: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
