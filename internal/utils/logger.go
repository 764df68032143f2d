package utils

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Logger struct {
	debug       bool
	debugLogger *log.Logger
	infoLogger  *log.Logger
	errorLogger *log.Logger
	fatalLogger *log.Logger
}

// NewLogger writes info and debug lines to out and errors to both out and stderr.
// A nil out means stdout.
func NewLogger(debug bool, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	var errOut io.Writer = os.Stderr
	if out != os.Stdout {
		errOut = io.MultiWriter(out, os.Stderr)
	}

	return &Logger{
		debug:       debug,
		debugLogger: log.New(out, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		infoLogger:  log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		fatalLogger: log.New(errOut, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{
		debugLogger: log.New(io.Discard, "", 0),
		infoLogger:  log.New(io.Discard, "", 0),
		errorLogger: log.New(io.Discard, "", 0),
		fatalLogger: log.New(io.Discard, "", 0),
	}
}

func (l *Logger) Debug(v ...interface{}) {
	if !l.debug {
		return
	}
	l.debugLogger.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Info(v ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.fatalLogger.Output(2, fmt.Sprintln(v...))
	os.Exit(1)
}
