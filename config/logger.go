// config/logger.go
package config

import (
	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func InitLogger() {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.SetLevel(logrus.InfoLevel) // or DebugLevel, etc.
}

// SetLevel applies a textual level such as "debug" or "warn". Unknown values keep the
// current level.
func SetLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Logger.Warn("Unknown log level, keeping current:", level)
		return
	}
	Logger.SetLevel(parsed)
}
