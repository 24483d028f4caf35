// Package logging constructs the process-wide logger, switching between
// JSON and human-readable text formatting the same way the teacher's
// internal/app/app.go does for its LOG_FORMAT setting.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger: format "json" selects JSONFormatter, anything
// else (including an empty string) selects TextFormatter.
func New(format string) *logrus.Logger {
	logger := logrus.New()
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
