// check_assets 检查动作配置引用的音效能否解码
//
// 用法：
//
//	go run ./cmd/check_assets -data .
//	go run ./cmd/check_assets -data . -verbose
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/decker502/mangabot/pkg/config"
	"github.com/decker502/mangabot/pkg/embedded"
	"github.com/decker502/mangabot/pkg/sound"
)

func main() {
	root := flag.String("data", ".", "包含 assets/ 和 data/ 的目录")
	verbose := flag.Bool("verbose", false, "显示详细调试信息")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(*root); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(root string) error {
	if err := embedded.InitFromDir(root); err != nil {
		return err
	}
	resources := embedded.FS()

	appConfig, err := config.LoadAppConfig(resources, "data/config.yaml")
	if err != nil {
		return err
	}
	actions, err := config.LoadActions(resources, appConfig.ActionsFile)
	if err != nil {
		return err
	}
	characters, err := config.LoadCharacters(resources, appConfig.CharactersFile)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d actions, %d characters\n", len(actions.Actions), characters.Len())

	ids := soundIDs(appConfig, actions)
	cache := sound.NewCache(sound.NewBeepDecoder(resources, appConfig.SampleRate), appConfig.SoundBaseDir)
	defer cache.Clear()

	err = cache.PreloadAll(context.Background(), ids...)
	for _, id := range ids {
		if _, ok := cache.Status(id); ok {
			fmt.Printf("✓ %s\n", id)
		} else {
			fmt.Printf("✗ %s\n", id)
		}
	}

	for _, c := range characters.Characters {
		if c.Image == "" {
			continue
		}
		if !embedded.Exists(c.Image) {
			fmt.Printf("✗ %-20s missing image %s\n", c.ID, c.Image)
		}
	}

	if err != nil {
		var preloadErr *sound.PreloadError
		if errors.As(err, &preloadErr) {
			return fmt.Errorf("sound %s cannot be decoded: %w", preloadErr.ID, preloadErr.Err)
		}
		return err
	}
	return nil
}

// soundIDs 汇总预加载列表和动作引用的音效，去重排序
func soundIDs(appConfig *config.AppConfig, actions *config.ActionSet) []string {
	seen := make(map[string]bool)
	for _, id := range appConfig.Preload {
		seen[id] = true
	}
	for _, a := range actions.Actions {
		seen[a.Sound] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
