package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuditConfig holds runtime configuration for one audit run.
// All values come from CLI flags or an optional YAML config file.
type AuditConfig struct {
	TargetURL   string   `yaml:"target_url"`
	PageURLs    []string `yaml:"page_urls"`
	Market      string   `yaml:"market"`
	WorkerCount int      `yaml:"workers"`

	// LLM context budgeting knobs.
	MaxTokens          int     `yaml:"max_tokens"`
	SystemPromptTokens int     `yaml:"system_prompt_tokens"`
	SafetyRatio        float64 `yaml:"safety_ratio"`

	MaxCompetitors int `yaml:"max_competitors"`
}

// Normalize fills unset fields with working defaults.
func (c *AuditConfig) Normalize() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 128000
	}
	if c.SafetyRatio <= 0 || c.SafetyRatio > 1 {
		c.SafetyRatio = 0.8
	}
	if c.SystemPromptTokens <= 0 {
		c.SystemPromptTokens = 2000
	}
	if c.MaxCompetitors <= 0 || c.MaxCompetitors > 5 {
		c.MaxCompetitors = 5
	}
}

// LoadAuditConfig reads an AuditConfig from a YAML file.
func LoadAuditConfig(path string) (*AuditConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg AuditConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
