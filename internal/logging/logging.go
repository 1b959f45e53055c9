// Package logging provides one named, leveled logger per subsystem,
// mirroring how the original Python implementation dedicated a module to
// get_logger(name, level) rather than using a single global logger.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp()
	loggers = map[string]zerolog.Logger{}
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetLevel changes the level every component logger logs at, including
// ones already handed out by For: none of them carry their own .Level()
// override, so they all consult zerolog's global level at log time.
func SetLevel(l zerolog.Level) {
	zerolog.SetGlobalLevel(l)
}

// For returns the named component's logger ("rawfile", "scan", "utxo",
// "tail", "checkpoint", ...), creating it on first use.
func For(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[component]; ok {
		return l
	}
	l := base.Str("component", component).Logger()
	loggers[component] = l
	return l
}
