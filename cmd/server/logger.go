package main

import (
	"fmt"
	"io"
	"metagen/internal/config"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger 配置全局 logrus，LOG_FILE 非空时同时写入滚动日志文件
func setupLogger(cfg config.Config) (func(), error) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)

	path := strings.TrimSpace(cfg.LogFile)
	if path == "" {
		logrus.SetOutput(os.Stdout)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return func() { _ = rotating.Close() }, nil
}
