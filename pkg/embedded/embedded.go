// Package embedded 提供资源文件系统的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包登记 assets/ 与 data/ 两棵文件树，让其他包按路径前缀读取资源。
// 开发时也可以用 InitFromDir 直接读取磁盘目录，配合热重载使用。
//
// 使用前必须调用 Init() 或 InitFromDir() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	assetsFS    fs.FS
	dataFS      fs.FS
	rootDir     string // 仅 InitFromDir 时非空
	initialized bool
)

// ErrNotInitialized 在 Init 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init 登记资源文件系统
// 两个 FS 的根目录都必须包含各自的前缀目录（"assets/..."、"data/..."），与 //go:embed 的布局一致
func Init(assets, data fs.FS) {
	assetsFS = assets
	dataFS = data
	rootDir = ""
	initialized = true
}

// InitFromDir 从磁盘目录登记资源，root 下应包含 assets/ 和 data/
func InitFromDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat resource root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("resource root %s is not a directory", root)
	}
	dirFS := os.DirFS(root)
	Init(dirFS, dirFS)
	rootDir = root
	return nil
}

// RootDir 返回磁盘资源根目录；使用嵌入资源时返回空字符串
func RootDir() string {
	return rootDir
}

// pick 根据路径前缀选择文件系统，返回标准化后的路径
func pick(path string) (fs.FS, string, error) {
	if !initialized {
		return nil, "", ErrNotInitialized
	}

	// 标准化路径分隔符为正斜杠，并移除可能的 "./" 前缀
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	switch {
	case strings.HasPrefix(path, "assets/"):
		return assetsFS, path, nil
	case strings.HasPrefix(path, "data/"):
		return dataFS, path, nil
	}
	return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/' or 'data/')", path)
}

// Open 根据路径前缀选择正确的文件系统并打开文件
func Open(path string) (fs.File, error) {
	fsys, name, err := pick(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(name)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// FS 返回按前缀路由的只读文件系统视图
// 声音后端通过它读取 "assets/sounds/xxx.mp3" 这类完整路径
func FS() fs.FS {
	return routedFS{}
}

type routedFS struct{}

func (routedFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	fsys, path, err := pick(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return fsys.Open(path)
}
