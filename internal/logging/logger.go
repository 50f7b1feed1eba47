package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide diagnostic logger
var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
}

// Configure applies level and format ("text" or "json") to Log
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Log.SetLevel(lvl)

	switch format {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	case "text", "":
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	return nil
}
