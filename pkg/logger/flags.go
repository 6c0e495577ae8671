package logger

import (
	"log/slog"

	"github.com/spf13/pflag"
)

// Root command flag names read by FromFlags.
const (
	FlagDebug   = "debug"
	FlagLogJSON = "log-json"
)

// FromFlags builds a logger from the root --debug and --log-json flags.
// Without --log-json the output is the pretty handler on stderr.
func FromFlags(fs *pflag.FlagSet) *slog.Logger {
	debug, _ := fs.GetBool(FlagDebug)
	jsonLogs, _ := fs.GetBool(FlagLogJSON)

	return New(
		WithDebug(debug),
		WithJSON(jsonLogs),
		WithPretty(!jsonLogs),
	)
}
