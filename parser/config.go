package parser

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Config controls a single parse.
type Config struct {
	// Debug traces every tokenizer step ([TOKEN]) and every tree construction
	// step ([TREE]). Logger keeps its own level.
	Debug bool
	// Logger receives traces and parse errors. A stderr logger at warn level
	// is used when nil.
	Logger *logrus.Logger
}

func DefaultConfig() Config {
	return Config{}
}

// logger never changes the level of a caller supplied Logger. In debug mode
// it returns a trace level logger sharing the caller's output, formatter and
// hooks.
func (c Config) logger() *logrus.Logger {
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		if c.Debug {
			l.SetLevel(logrus.TraceLevel)
		}
		return l
	}
	if !c.Debug {
		return c.Logger
	}
	return &logrus.Logger{
		Out:          c.Logger.Out,
		Hooks:        c.Logger.Hooks,
		Formatter:    c.Logger.Formatter,
		ReportCaller: c.Logger.ReportCaller,
		Level:        logrus.TraceLevel,
		ExitFunc:     c.Logger.ExitFunc,
	}
}
