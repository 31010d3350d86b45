package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量
const (
	EnvLevel     = "NOSTRKIT_LOG_LEVEL"
	EnvFormat    = "NOSTRKIT_LOG_FORMAT"
	EnvAddSource = "NOSTRKIT_LOG_ADD_SOURCE"
)

// LogFormat 输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	mu sync.RWMutex

	// DefaultLevel 默认级别
	DefaultLevel slog.Level

	// SubsystemLevels 子系统级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否输出源码位置
	AddSource bool
}

// LevelForSubsystem 返回子系统级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

func (c *Config) setDefault(level slog.Level) {
	c.mu.Lock()
	c.DefaultLevel = level
	c.mu.Unlock()
}

var (
	configCache *Config
	configOnce  sync.Once
)

// ConfigFromEnv 读取环境变量配置（只解析一次）
//
//   - NOSTRKIT_LOG_LEVEL: relay=debug,pool=warn,info
//   - NOSTRKIT_LOG_FORMAT: text | json
//   - NOSTRKIT_LOG_ADD_SOURCE: true | false
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		configCache = parseConfig()
	})
	return configCache
}

func parseConfig() *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}

	if v := os.Getenv(EnvLevel); v != "" {
		parseLevelConfig(cfg, v)
	}
	if strings.EqualFold(os.Getenv(EnvFormat), "json") {
		cfg.Format = FormatJSON
	}
	if v := os.Getenv(EnvAddSource); v != "" {
		cfg.AddSource = v != "false" && v != "0"
	}
	return cfg
}

// parseLevelConfig 解析 subsystem=level,...,defaultLevel
func parseLevelConfig(cfg *Config, spec string) {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subsystem, name, found := strings.Cut(part, "=")
		if !found {
			if level, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = level
			}
			continue
		}
		if level, ok := ParseLevel(strings.TrimSpace(name)); ok {
			cfg.SubsystemLevels[strings.TrimSpace(subsystem)] = level
		}
	}
}

// ParseLevel 解析级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig 重置配置缓存（测试用）
func ResetConfig() {
	configOnce = sync.Once{}
	configCache = nil
}
