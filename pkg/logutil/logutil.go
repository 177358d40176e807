// Package logutil provides a shared destination for debug logs.
//
// Packages that want to log debug information acquire a *log.Logger with
// GetLogger at init time. All returned loggers write to a common destination,
// which discards everything until the program selects a real destination with
// SetOutput or SetOutputFile (typically from the -log flag).
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	file    *os.File
	loggers []*log.Logger
)

// GetLogger returns a Logger that writes to the process-wide log destination,
// with the given prefix.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers, including those returned by
// future GetLogger calls, to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	out = w
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}

// SetOutputFile is like SetOutput, with the destination opened from a file
// name. An empty name resets the destination to discard.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", fname, err)
	}
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	file = f
	out = f
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
	return nil
}

func closeFile() {
	if file != nil {
		file.Close()
		file = nil
	}
}
