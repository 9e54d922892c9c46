package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Openai struct {
		ApiKey string `yaml:"apiKey"`
	} `yaml:"openai"`

	Interview struct {
		TopicQuestionCount  int    `yaml:"topicQuestionCount"`
		ResumeQuestionCount int    `yaml:"resumeQuestionCount"`
		SettleDelay         string `yaml:"settleDelay"`
		AudioDir            string `yaml:"audioDir"`
	} `yaml:"interview"`

	Log struct {
		JSON  bool `yaml:"json"`
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
}

// LoadConfig reads the configuration file and applies environment overrides
// for secrets and connection settings.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if _, err := cfg.SettleDelay(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.ApiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Openai.ApiKey = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Interview.TopicQuestionCount == 0 {
		c.Interview.TopicQuestionCount = 10
	}
	if c.Interview.ResumeQuestionCount == 0 {
		c.Interview.ResumeQuestionCount = 7
	}
	if c.Interview.SettleDelay == "" {
		c.Interview.SettleDelay = "1s"
	}
	if c.Interview.AudioDir == "" {
		c.Interview.AudioDir = "./public/audio"
	}
}

// SettleDelay parses the configured pause between question playback ending
// and answer capture starting.
func (c *Config) SettleDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interview.SettleDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid settleDelay %q: %w", c.Interview.SettleDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid settleDelay %q: must not be negative", c.Interview.SettleDelay)
	}
	return d, nil
}
