package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger
	level LogLevel
)

func init() {
	// Default to stderr until Init is called so packages can log safely
	// from tests and short-lived cloud invocations.
	configure(os.Stderr, LevelInfo)
}

func ParseLogLevel(lvl string) LogLevel {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return LevelDebug
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	default:
		return LevelInfo
	}
}

type nullWriter struct{}

func (nw *nullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// Init configures the package loggers. An empty logPath keeps logging on
// stderr, which is what cloud function runtimes collect.
func Init(logPath string, logLevel LogLevel) error {
	if logPath == "" {
		configure(os.Stderr, logLevel)
		return nil
	}

	if err := os.MkdirAll(logPath, 0755); err != nil {
		return err
	}

	// Open log file with 0644 permissions
	logFile, err := os.OpenFile(
		filepath.Join(logPath, "slack_image_relay.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		return err
	}

	configure(logFile, logLevel)
	return nil
}

func configure(sink io.Writer, logLevel LogLevel) {
	level = logLevel

	// Always enable Error logging
	Error = log.New(sink, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Configure Warn logger based on level
	warnWriter := io.Writer(&nullWriter{})
	if level >= LevelWarn {
		warnWriter = sink
	}
	Warn = log.New(warnWriter, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Configure Info logger based on level
	infoWriter := io.Writer(&nullWriter{})
	if level >= LevelInfo {
		infoWriter = sink
	}
	Info = log.New(infoWriter, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Configure Debug logger based on level
	debugWriter := io.Writer(&nullWriter{})
	if level >= LevelDebug {
		debugWriter = sink
	}
	Debug = log.New(debugWriter, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}
