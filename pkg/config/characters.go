package config

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Character 可选角色
type Character struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"` // 头像资源路径
}

// CharacterSet 角色列表文件（data/characters.yaml）
type CharacterSet struct {
	Characters []Character `yaml:"characters"`
}

// Find 按 ID 查找角色
func (s *CharacterSet) Find(id string) (Character, bool) {
	for _, c := range s.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// Len 角色数量
func (s *CharacterSet) Len() int {
	return len(s.Characters)
}

// LoadCharacters 从文件系统读取角色列表
func LoadCharacters(fsys fs.FS, name string) (*CharacterSet, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file %s: %w", name, err)
	}
	set, err := ParseCharacters(data)
	if err != nil {
		return nil, fmt.Errorf("invalid characters in %s: %w", name, err)
	}
	return set, nil
}

// ParseCharacters 解析并校验 YAML 角色列表
func ParseCharacters(data []byte) (*CharacterSet, error) {
	var set CharacterSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse characters YAML: %w", err)
	}
	if len(set.Characters) == 0 {
		return nil, fmt.Errorf("at least one character is required")
	}

	seen := make(map[string]bool, len(set.Characters))
	for i, c := range set.Characters {
		if c.ID == "" {
			return nil, fmt.Errorf("character %d: id is required", i)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("character %s: name is required", c.ID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate character %q", c.ID)
		}
		seen[c.ID] = true
	}
	return &set, nil
}

// DefaultCharacters 内置角色列表，与 data/characters.yaml 一致
func DefaultCharacters() *CharacterSet {
	return &CharacterSet{Characters: []Character{
		{
			ID:          "red-girl",
			Name:        "Red-Haired Girl",
			Description: "Pale-skinned girl with fiery red hair",
			Image:       "assets/images/redgirl.png",
		},
		{
			ID:          "cyber-human",
			Name:        "CyberHuman",
			Description: "CyberHuman-inspired avatar",
			Image:       "assets/images/CyberHuman.png",
		},
	}}
}
