package infrastructures

import (
	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
}

// ConfigureLogger applies the configured level to both the package logger
// and the logrus standard logger used across services.
func ConfigureLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("invalid log level %q, falling back to info", level)
		parsed = logrus.InfoLevel
	}

	logger.SetLevel(parsed)
	logrus.SetLevel(parsed)
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	return logger
}
