package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

// Get returns the shared application logger
func Get() *logrus.Logger {
	return log
}

// WithModule returns an entry tagged with the originating module name
func WithModule(module string) *logrus.Entry {
	return log.WithField("module", module)
}
