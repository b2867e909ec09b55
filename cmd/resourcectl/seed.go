package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"climb-planner/backend/internal/dto"
)

// loadSeed 读取资源种子文件；未知字段直接报错，避免拼写错误被静默忽略
func loadSeed(path string) (*dto.ResourceSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取种子文件失败: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var seed dto.ResourceSeed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}
	return &seed, nil
}
