package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var hostname string

func init() {
	hostname, _ = os.Hostname()
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

// Setup applies the configured level. Unknown levels keep info.
func Setup(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	if !production {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// LogService returns an entry tagged with the calling service name.
func LogService(name string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"hostname": hostname,
		"service":  name,
	})
}
