package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ivanvallejoss/hr-system/internal/platform/config"
	"github.com/sirupsen/logrus"
)

// New はログ設定から logrus.Logger を生成します。
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// Discard は出力を捨てるロガーを返します。テストや未設定時に使います。
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
