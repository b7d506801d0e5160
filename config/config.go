// Package config 提供训练作业的配置加载（YAML/JSON）与请求构建。
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/trainkit/algo"
	"github.com/rushteam/trainkit/train"
)

// Config 是训练作业的配置结构（支持 YAML/JSON）。
type Config struct {
	Job struct {
		Name        string            `yaml:"name" json:"name"`
		Algorithm   string            `yaml:"algorithm" json:"algorithm"`       // 已注册的算法名称，如 "lr"
		Path        string            `yaml:"path" json:"path"`                 // 模型目标根路径
		KeepVersion bool              `yaml:"keep_version" json:"keep_version"` // 保留历史版本
		Params      map[string]string `yaml:"params" json:"params"`             // 扁平参数表（含 fitParam.<n>.<key>）
	} `yaml:"job" json:"job"`
}

// LoadFromYAML 从 YAML 文件加载作业配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载作业配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// BuildRequest 根据配置构建训练请求（需要算法已通过 algo.Register 注册，
// 内置算法由 import _ "github.com/rushteam/trainkit/algo/builders" 触发）。
// 数据集句柄是运行期对象，由调用方在返回的请求上补齐。
func (c *Config) BuildRequest() (train.Request, error) {
	a, err := algo.Get(c.Job.Algorithm)
	if err != nil {
		return train.Request{}, fmt.Errorf("build job %s: %w", c.Job.Name, err)
	}
	if c.Job.Path == "" {
		return train.Request{}, fmt.Errorf("build job %s: path is required", c.Job.Name)
	}

	return train.Request{
		Factory:     a.Factory(),
		Path:        c.Job.Path,
		Params:      c.Job.Params,
		KeepVersion: c.Job.KeepVersion,
	}, nil
}
