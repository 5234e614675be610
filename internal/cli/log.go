package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger returns a leveled logger with short timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logFormatters maps --log-format values to formatters.
var logFormatters = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// logFlags are the global logging flags.
type logFlags struct {
	verbose bool
	quiet   bool
	format  string
}

func (f *logFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log cache lookups, fetches and layout timings")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&f.format, "log-format", "text", "log format: text, json or logfmt")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = cmd.RegisterFlagCompletionFunc("log-format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "logfmt"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f *logFlags) level() log.Level {
	switch {
	case f.verbose:
		return log.DebugLevel
	case f.quiet:
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// apply configures l from the flags.
func (f *logFlags) apply(l *log.Logger) error {
	formatter, ok := logFormatters[f.format]
	if !ok {
		return fmt.Errorf("invalid log format %q: want text, json or logfmt", f.format)
	}
	l.SetFormatter(formatter)
	l.SetLevel(f.level())
	return nil
}

// progress times an operation and its steps.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// step logs a finished step at debug level with the time since the
// previous one.
func (p *progress) step(msg string, keyvals ...any) {
	now := time.Now()
	p.logger.Debug(msg, append(keyvals, "took", now.Sub(p.last).Round(time.Millisecond))...)
	p.last = now
}

// done logs msg with the total elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
