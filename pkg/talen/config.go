// pkg/talen/config.go
package talen

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"talen-core/finder"

	"talen/internal/logging"
)

// Log formats for Config.LogFormat.
const (
	LogText = "text"
	LogJSON = "json"
)

// ErrInvalidConfig wraps every Config.Validate failure.
var ErrInvalidConfig = errors.New("talen: invalid config")

// Config controls a Scanner. Zero values select defaults.
type Config struct {
	Threads    int // worker goroutines; 0 => runtime.NumCPU()
	Partitions int // dataset partitions; 0 => Threads

	// InfixLength is the head infix length. 0 picks it per probe for single
	// scans, and once per probe pair for paired scans; at most 8 either way.
	InfixLength int

	TrieStartDepth int // 0 => finder.DefaultStartDepth
	TrieMaxDepth   int // 0 => finder.DefaultMaxDepth

	// Logger receives scan logs. When nil, LogFormat selects a stderr
	// logger at LogLevel; an empty LogFormat discards everything.
	Logger    *slog.Logger
	LogFormat string
	LogLevel  slog.Level
}

// Defaults returns the configuration used for zero fields.
func Defaults() Config {
	return Config{
		Threads:        runtime.NumCPU(),
		TrieStartDepth: finder.DefaultStartDepth,
		TrieMaxDepth:   finder.DefaultMaxDepth,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Threads < 0:
		return fmt.Errorf("%w: threads %d", ErrInvalidConfig, c.Threads)
	case c.Partitions < 0:
		return fmt.Errorf("%w: partitions %d", ErrInvalidConfig, c.Partitions)
	case c.InfixLength < 0 || c.InfixLength > finder.MaxInfixLength:
		return fmt.Errorf("%w: infix length %d not in [0,%d]", ErrInvalidConfig, c.InfixLength, finder.MaxInfixLength)
	case c.TrieStartDepth < 0 || c.TrieMaxDepth < 0:
		return fmt.Errorf("%w: negative trie depth", ErrInvalidConfig)
	case c.TrieMaxDepth > 0 && c.TrieStartDepth > c.TrieMaxDepth:
		return fmt.Errorf("%w: trie start depth %d exceeds max depth %d", ErrInvalidConfig, c.TrieStartDepth, c.TrieMaxDepth)
	case c.LogFormat != "" && c.LogFormat != LogText && c.LogFormat != LogJSON:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func (c Config) logger() *logging.Logger {
	switch {
	case c.Logger != nil:
		return logging.NewLogger(c.Logger.Handler())
	case c.LogFormat == LogText:
		return logging.NewTextLogger(c.LogLevel)
	case c.LogFormat == LogJSON:
		return logging.NewJSONLogger(c.LogLevel)
	}
	return logging.NoopLogger()
}

func (c Config) withDefaults() Config {
	d := Defaults()
	if c.Threads == 0 {
		c.Threads = d.Threads
	}
	if c.TrieStartDepth == 0 {
		c.TrieStartDepth = d.TrieStartDepth
	}
	if c.TrieMaxDepth == 0 {
		c.TrieMaxDepth = max(d.TrieMaxDepth, c.TrieStartDepth)
	}
	return c
}
