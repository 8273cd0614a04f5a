package biasednonce

import (
	"fmt"
	"io"
	"strings"
)

type Logger interface {
	Error(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Error(msg string, args ...interface{})   {}
func (nopLogger) Warning(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})    {}
func (nopLogger) Debug(msg string, args ...interface{})   {}

// NopLogger discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

type writerLogger struct {
	w     io.Writer
	debug bool
}

// StdLogger writes one line per message to w, prefixed the way the command
// line tools print progress. Debug messages are dropped.
func StdLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// VerboseLogger is StdLogger with debug output enabled.
func VerboseLogger(w io.Writer) Logger {
	return &writerLogger{w: w, debug: true}
}

func (l *writerLogger) Error(msg string, args ...interface{}) {
	l.print("[!] ", msg, args)
}

func (l *writerLogger) Warning(msg string, args ...interface{}) {
	l.print("[-] ", msg, args)
}

func (l *writerLogger) Info(msg string, args ...interface{}) {
	l.print("[+] ", msg, args)
}

func (l *writerLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("[*] ", msg, args)
	}
}

func (l *writerLogger) print(prefix, msg string, args []interface{}) {
	line := fmt.Sprintf(msg, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, _ = io.WriteString(l.w, prefix+line)
}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
