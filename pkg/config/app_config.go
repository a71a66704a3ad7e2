package config

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// 窗口逻辑尺寸
const (
	WindowWidth  = 800
	WindowHeight = 600
)

// 可选的音效后端
const (
	BackendEbiten = "ebiten"
	BackendBeep   = "beep"
)

// AppConfig 应用配置（data/config.yaml）
type AppConfig struct {
	AppName        string   `yaml:"appName"`        // gdata 存档目录名
	Backend        string   `yaml:"backend"`        // 音效后端："ebiten" 或 "beep"
	SoundBaseDir   string   `yaml:"soundBaseDir"`   // 音效目录，默认 assets/sounds
	SampleRate     int      `yaml:"sampleRate"`     // 采样率，默认 48000
	Preload        []string `yaml:"preload"`        // 启动时预加载的音效
	ActionsFile    string   `yaml:"actionsFile"`    // 动作时间轴文件
	CharactersFile string   `yaml:"charactersFile"` // 角色列表文件
}

// DefaultAppConfig 返回默认配置
func DefaultAppConfig() AppConfig {
	cfg := AppConfig{}
	applyAppDefaults(&cfg)
	return cfg
}

// LoadAppConfig 从文件系统读取应用配置
// 参数：
//
//	fsys - 配置所在文件系统（嵌入资源或开发目录）
//	name - 配置文件路径，如 "data/config.yaml"
//
// 返回：
//
//	*AppConfig - 应用默认值并校验后的配置
//	error - 读取、解析或校验失败
func LoadAppConfig(fsys fs.FS, name string) (*AppConfig, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config %s: %w", name, err)
	}
	cfg, err := ParseAppConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid app config in %s: %w", name, err)
	}
	return cfg, nil
}

// ParseAppConfig 解析 YAML 应用配置
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config YAML: %w", err)
	}
	applyAppDefaults(&cfg)
	if err := validateAppConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyAppDefaults(cfg *AppConfig) {
	if cfg.AppName == "" {
		cfg.AppName = "mangabot"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendEbiten
	}
	if cfg.SoundBaseDir == "" {
		cfg.SoundBaseDir = "assets/sounds"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Preload == nil {
		cfg.Preload = []string{"demo.mp3", "select.mp3", "chin-chin.mp3"}
	}
	if cfg.ActionsFile == "" {
		cfg.ActionsFile = "data/actions.yaml"
	}
	if cfg.CharactersFile == "" {
		cfg.CharactersFile = "data/characters.yaml"
	}
}

func validateAppConfig(cfg *AppConfig) error {
	switch cfg.Backend {
	case BackendEbiten, BackendBeep:
	default:
		return fmt.Errorf("backend must be one of: %s, %s, got %q", BackendEbiten, BackendBeep, cfg.Backend)
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 192000 {
		return fmt.Errorf("sampleRate must be between 8000 and 192000, got %d", cfg.SampleRate)
	}
	for i, id := range cfg.Preload {
		if id == "" {
			return fmt.Errorf("preload[%d]: sound id is required", i)
		}
	}
	return nil
}
