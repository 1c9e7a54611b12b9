package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/vk/shadernet/internal/app"
)

// ExitError carries the process exit code for a failed invocation.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	logFormats = []string{"text", "json"}
	logLevels  = []string{"debug", "info", "warn", "error"}
)

// choice lowercases value and checks it against allowed.
func choice(flagName, value string, allowed []string) (string, error) {
	v := strings.ToLower(value)
	if slices.Contains(allowed, v) {
		return v, nil
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = "'" + a + "'"
	}
	return "", usageError("invalid %s: must be one of %s", flagName, strings.Join(quoted, ", "))
}

const usageText = `
shadernet - Flattens shader node graphs into renderer-ready networks.

Usage:
  shadernet [options] -output NODE.out [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    A .hcl graph file, or a directory whose .hcl files are merged.

Options:
`

// Parse turns command-line arguments into a validated Config. The boolean
// result is true when the process should exit cleanly without running,
// after -h or when no graph path was given.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	fs := flag.NewFlagSet("shadernet", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usageText)
		fs.PrintDefaults()
	}

	var (
		graph, suffix, logFormat, logLevel string
		outputs, variables                 stringList
		workers                            int
		hashOnly                           bool
	)
	fs.StringVar(&graph, "graph", "", "Graph file or directory.")
	fs.StringVar(&graph, "g", "", "Graph file or directory (shorthand).")
	fs.Var(&outputs, "output", "Output parameter to flatten, e.g. 'surface.out'. Repeatable.")
	fs.Var(&outputs, "o", "Output parameter to flatten (shorthand). Repeatable.")
	fs.Var(&variables, "var", "Context variable as name=value, e.g. 'frame=10'. Repeatable.")
	fs.StringVar(&suffix, "suffix", "", "Suffix appended to the attribute name.")
	fs.BoolVar(&hashOnly, "hash-only", false, "Only report attribute hashes, without building networks.")
	fs.StringVar(&logFormat, "log-format", "text", "Log format: 'text' or 'json'.")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: 'debug', 'info', 'warn' or 'error'.")
	fs.IntVar(&workers, "workers", 4, "Number of outputs flattened concurrently. 0 is unbounded.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}

	if graph == "" && fs.NArg() > 0 {
		graph = fs.Arg(0)
	}
	if graph == "" {
		slog.Debug("No graph path given, printing usage.")
		fs.Usage()
		return nil, true, nil
	}

	var err error
	if logFormat, err = choice("log-format", logFormat, logFormats); err != nil {
		return nil, false, err
	}
	if logLevel, err = choice("log-level", logLevel, logLevels); err != nil {
		return nil, false, err
	}

	cfg, err := app.NewConfig(app.Config{
		GraphPath:   graph,
		Outputs:     outputs,
		Suffix:      suffix,
		Variables:   variables,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: workers,
		HashOnly:    hashOnly,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Command line parsed.", "graph", cfg.GraphPath, "outputs", cfg.Outputs)
	return cfg, false, nil
}
