// Package logger 提供 nostrkit 的子系统日志
//
// 基于标准库 log/slog：
//   - 每个子系统一个 Logger，级别可独立配置
//   - 环境变量配置（NOSTRKIT_LOG_LEVEL, NOSTRKIT_LOG_FORMAT, NOSTRKIT_LOG_ADD_SOURCE）
//   - 运行时调整级别与输出目标
//
// 使用示例:
//
//	var log = logger.Logger("relay")
//
//	log.Info("connected", "relay", url)
//	log.Debug("frame dropped", "relay", url, "reason", reason)
//
// 环境变量配置:
//
//	# relay 子系统 debug，其余 info
//	NOSTRKIT_LOG_LEVEL=relay=debug,info
//
//	# JSON 输出
//	NOSTRKIT_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 子系统 Logger 缓存
	loggers sync.Map // map[string]*slog.Logger

	// levels 子系统级别，同一子系统派生出的 Logger 共享
	levels sync.Map // map[string]*slog.LevelVar
)

// Logger 获取子系统 Logger
//
// 同一子系统多次调用返回同一实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := levelVar(subsystem, cfg.LevelForSubsystem(subsystem))
	l := slog.New(newHandler(subsystem, lv, cfg))

	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

func levelVar(subsystem string, initial slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(initial)
	actual, _ := levels.LoadOrStore(subsystem, lv)
	return actual.(*slog.LevelVar)
}

// SetLevel 运行时设置子系统级别
func SetLevel(subsystem string, level slog.Level) {
	levelVar(subsystem, level).Set(level)
}

// SetGlobalLevel 设置所有已创建子系统的级别
func SetGlobalLevel(level slog.Level) {
	levels.Range(func(_, value any) bool {
		value.(*slog.LevelVar).Set(level)
		return true
	})
}

// ApplyLevelSpec 按 "relay=debug,warn" 形式的字符串调整级别
//
// 不带子系统的项作用于所有已创建的子系统。
func ApplyLevelSpec(spec string) {
	cfg := &Config{DefaultLevel: slog.Level(-100), SubsystemLevels: make(map[string]slog.Level)}
	parseLevelConfig(cfg, spec)
	if cfg.DefaultLevel != slog.Level(-100) {
		SetGlobalLevel(cfg.DefaultLevel)
		ConfigFromEnv().setDefault(cfg.DefaultLevel)
	}
	for subsystem, level := range cfg.SubsystemLevels {
		SetLevel(subsystem, level)
	}
}

// Discard 返回丢弃所有输出的 Logger（测试用）
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 返回带预设属性的子系统 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置日志输出目标，已创建的 Logger 同样生效
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}
