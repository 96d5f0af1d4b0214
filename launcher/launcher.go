package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// DefaultName is the program name shown in usage text.
	DefaultName = "collapse"
	// DefaultScript is the analysis script's file name. It must sit in the
	// same directory as the launcher executable.
	DefaultScript = "stackcollapse_simpleperf.py"
	// ExplainThread is the thread the analysis script is asked to explain.
	ExplainThread = "GameThread"
	// ExampleDataFile is used in the usage example.
	ExampleDataFile = "perf_icache.data"
)

// Command returns the arguments passed to the interpreter: the script path,
// followed by the fixed analysis flags for dataFile.
func Command(script, dataFile string) []string {
	return []string{
		script,
		"--data", dataFile,
		"--dedug-first-start-thread",
		"--explain-thread", ExplainThread,
		"--equalize-root-sum",
	}
}

// Launcher validates a perf data file argument and runs the analysis script
// on it.
//
// Create instances with [New] or [Config.NewLauncher]. Every field may be
// replaced before calling [Launcher.Run].
type Launcher struct {
	// Runner starts the interpreter.
	Runner Runner
	// Stdout receives the user-facing messages.
	Stdout io.Writer
	// Logger receives diagnostics.
	Logger *slog.Logger
	// Executable returns the path of the running launcher.
	Executable func() (string, error)
	// Exists reports whether a path is present on the filesystem.
	Exists func(string) bool

	// Name is the program name used in usage text.
	Name string
	// Script is the analysis script's file name, relative to the launcher's
	// directory.
	Script string

	Interpreter Interpreter
}

// New returns a [Launcher] with default settings that runs the script with an
// [ExecRunner] inheriting the process's standard streams.
func New(stdout io.Writer, logger *slog.Logger) *Launcher {
	return &Launcher{
		Runner:      NewExecRunner(),
		Stdout:      stdout,
		Logger:      logger,
		Executable:  os.Executable,
		Exists:      FileExists,
		Name:        DefaultName,
		Script:      DefaultScript,
		Interpreter: DefaultInterpreter(),
	}
}

// Run performs one launch for args, which must hold exactly the data file
// path. It blocks until the analysis script exits.
//
// The returned error wraps one of [ErrUsage], [ErrDataFileNotFound],
// [ErrScriptNotFound], or [ErrSpawn], or is an [*ExitError]. Pass it to
// [ExitCode] to get the process exit code.
func (l *Launcher) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		l.PrintUsage()

		return fmt.Errorf("%w: expected 1 argument, got %d", ErrUsage, len(args))
	}

	dataFile := args[0]
	l.logger().DebugContext(ctx, "checking data file", slog.String("path", dataFile))

	if !l.Exists(dataFile) {
		l.printf("Error: Data file not found: %s\n", dataFile)

		return fmt.Errorf("%w: %s", ErrDataFileNotFound, dataFile)
	}

	script, err := l.ScriptPath()
	if err != nil {
		l.printf("Error: Script not found: %s\n", l.Script)

		return fmt.Errorf("%w: %w", ErrScriptNotFound, err)
	}

	if !l.Exists(script) {
		l.printf("Error: Script not found: %s\n", script)

		return fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	interp := l.Interpreter.Resolve(l.Exists)
	argv := Command(script, dataFile)

	l.logger().DebugContext(ctx, "launching analysis",
		slog.String("interpreter", interp),
		slog.Bool("preferred", interp == l.Interpreter.Preferred),
		slog.Any("args", argv),
	)

	res, err := l.Runner.Run(ctx, interp, argv)
	if err != nil {
		l.logger().ErrorContext(ctx, "start interpreter",
			slog.String("interpreter", interp),
			slog.Any("err", err),
		)
		l.printf("Failed with exit code %d.\n", 1)

		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	if res.ExitCode != 0 {
		l.printf("Failed with exit code %d.\n", res.ExitCode)

		return &ExitError{Code: res.ExitCode}
	}

	l.printf("Done.\n")

	return nil
}

// ScriptPath returns the expected location of the analysis script: the
// launcher executable's directory, with symlinks resolved, joined with
// [Launcher.Script].
func (l *Launcher) ScriptPath() (string, error) {
	exe, err := l.Executable()
	if err != nil {
		return "", fmt.Errorf("locating launcher: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), l.Script), nil
}

// PrintUsage writes usage and an example invocation to [Launcher.Stdout].
// The second form, with "--", is for data files whose names start with "-"
// or match a subcommand.
func (l *Launcher) PrintUsage() {
	l.printf("Usage: %s <perf_data_file>\n", l.Name)
	l.printf("       %s -- <perf_data_file>\n", l.Name)
	l.printf("Example: %s %s\n", l.Name, ExampleDataFile)
}

func (l *Launcher) printf(format string, a ...any) {
	_, err := fmt.Fprintf(l.Stdout, format, a...)
	if err != nil {
		l.logger().Warn("write output", slog.Any("err", err))
	}
}

func (l *Launcher) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return l.Logger
}
