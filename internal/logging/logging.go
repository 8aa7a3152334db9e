// Package logging builds the component loggers used throughout the scanner.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stdout, and also to a size-rotated file
// when logFile is non-empty. The prefix identifies the component.
func New(prefix, logFile string) *log.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, fileLogger)
	}
	return log.New(w, prefix, log.LstdFlags|log.Lshortfile)
}
