// Package launcher runs the simpleperf stack-collapse script against a perf
// data file.
//
// A [Launcher] validates its single positional argument, finds
// stackcollapse_simpleperf.py next to the running executable, picks a Python
// interpreter with [Interpreter.Resolve], and runs the script with a fixed set
// of analysis flags (see [Command]). The child's exit code becomes the
// launcher's own:
//
//	l := launcher.New(os.Stdout, slog.Default())
//	err := l.Run(ctx, args)
//	os.Exit(launcher.ExitCode(err))
//
// Messages meant for the user are written to [Launcher.Stdout]; diagnostics go
// to [Launcher.Logger].
//
// The script is opaque: only its exit status is consumed. An interpreter that
// does not exist is only discovered when the [Runner] fails to start it.
package launcher
