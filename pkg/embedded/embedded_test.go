package embedded

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// reset 恢复包级状态，避免测试之间互相影响
func reset() {
	assetsFS = nil
	dataFS = nil
	rootDir = ""
	initialized = false
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"assets/sounds/click.mp3": {Data: []byte("mp3")},
		"data/actions.yaml":       {Data: []byte("actions: []")},
	}
}

// TestOpenNotInitialized 测试未初始化时调用 Open
func TestOpenNotInitialized(t *testing.T) {
	reset()

	_, err := Open("assets/sounds/click.mp3")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Open() error = %v, want ErrNotInitialized", err)
	}

	if Exists("data/actions.yaml") {
		t.Error("Exists() should be false before Init()")
	}
}

// TestPrefixRouting 测试按前缀选择文件系统
func TestPrefixRouting(t *testing.T) {
	reset()
	defer reset()

	fsys := testFS()
	Init(fsys, fsys)

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "assets/sounds/click.mp3", want: "mp3"},
		{path: "./data/actions.yaml", want: "actions: []"},
		{path: "config/other.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			file, err := Open(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Open(%q) expected error", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) error: %v", tt.path, err)
			}
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				t.Fatalf("ReadAll(%q) error: %v", tt.path, err)
			}
			if string(data) != tt.want {
				t.Errorf("Open(%q) read %q, want %q", tt.path, data, tt.want)
			}
		})
	}

	if !Exists("assets/sounds/click.mp3") {
		t.Error("Exists() returned false for an existing asset")
	}
	if Exists("assets/sounds/missing.mp3") {
		t.Error("Exists() returned true for a missing asset")
	}
}

// TestFSView 测试 FS() 视图可直接交给 fs.ReadFile 使用
func TestFSView(t *testing.T) {
	reset()
	defer reset()

	fsys := testFS()
	Init(fsys, fsys)

	data, err := fs.ReadFile(FS(), "assets/sounds/click.mp3")
	if err != nil {
		t.Fatalf("fs.ReadFile error: %v", err)
	}
	if string(data) != "mp3" {
		t.Errorf("got %q, want %q", data, "mp3")
	}

	if _, err := FS().Open("../escape"); err == nil {
		t.Error("expected invalid path error")
	}
}

// TestInitFromDir 测试从磁盘目录初始化
func TestInitFromDir(t *testing.T) {
	reset()
	defer reset()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "data", "characters.yaml"), []byte("characters: []"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := InitFromDir(root); err != nil {
		t.Fatalf("InitFromDir() error: %v", err)
	}
	if RootDir() != root {
		t.Errorf("RootDir() = %q, want %q", RootDir(), root)
	}

	data, err := fs.ReadFile(FS(), "data/characters.yaml")
	if err != nil {
		t.Fatalf("fs.ReadFile() error: %v", err)
	}
	if string(data) != "characters: []" {
		t.Errorf("got %q, want %q", data, "characters: []")
	}

	if err := InitFromDir(filepath.Join(root, "missing")); err == nil {
		t.Error("InitFromDir() expected error for missing directory")
	}
}
