// Command collapse runs stackcollapse_simpleperf.py on a simpleperf data file.
//
// The script must live next to the collapse executable. It is run with the
// Python bundled with Unreal Engine when that is installed, and with python
// from PATH otherwise:
//
//	<python> stackcollapse_simpleperf.py --data <perf_data_file> \
//	    --dedug-first-start-thread --explain-thread GameThread --equalize-root-sum
//
// # Usage
//
//	collapse [flags] <perf_data_file>
//	collapse [flags] -- <perf_data_file>
//	collapse config show
//	collapse config schema
//	collapse version
//
// # Exit codes
//
// 0 on success, 1 for usage errors, a missing data file or script, or an
// interpreter that could not be started, and the script's own exit code when
// the analysis fails.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/collapse/launcher"
	"go.jacobcolvin.com/collapse/log"
	"go.jacobcolvin.com/collapse/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(launchArgs(args))

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !reported(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	return launcher.ExitCode(err)
}

// launchArgs terminates flag and subcommand parsing when the only argument is
// an existing path, so that a data file named "version" or "-perf.data" is
// still launched.
func launchArgs(args []string) []string {
	if len(args) == 1 && args[0] != "--" && launcher.FileExists(args[0]) {
		return []string{"--", args[0]}
	}

	return args
}

// reported tells whether the launcher already printed a message for err.
func reported(err error) bool {
	for _, target := range []error{
		launcher.ErrUsage,
		launcher.ErrDataFileNotFound,
		launcher.ErrScriptNotFound,
		launcher.ErrSpawn,
		launcher.ErrSubprocessFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	logCfg := log.NewConfig()
	launchCfg := launcher.NewConfig()
	logger := slog.New(slog.DiscardHandler)

	rootCmd := &cobra.Command{
		Use:   "collapse [flags] <perf_data_file>",
		Short: "Collapse a simpleperf data file into folded stacks",
		Long: `collapse runs stackcollapse_simpleperf.py, found next to this executable,
on a simpleperf data file. It prefers the Python bundled with Unreal Engine and
falls back to python on PATH.

A single argument naming an existing file is always launched, even when it
matches a subcommand. Otherwise put -- before a data file whose name starts
with "-" or matches a subcommand.`,
		Example:       "  collapse " + launcher.ExampleDataFile + "\n  collapse --log-level debug -- version",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(stderr)
			if err != nil {
				return err
			}

			logger = slog.New(handler)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := launchCfg.NewLauncher(stdout, logger)
			if err != nil {
				return err
			}

			return l.Run(cmd.Context(), args)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			return []string{"data"}, cobra.ShellCompDirectiveFilterFileExt
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	launchCfg.RegisterFlags(rootCmd.PersistentFlags())

	versionCmd := newVersionCmd(stdout)

	rootCmd.AddCommand(
		newConfigCmd(launchCfg, stdout),
		versionCmd,
	)

	for _, register := range []func() error{
		func() error { return logCfg.RegisterCompletions(rootCmd) },
		func() error { return launchCfg.RegisterCompletions(rootCmd) },
		func() error { return registerVersionCompletions(versionCmd) },
	} {
		err := register()
		if err != nil {
			fmt.Fprintf(stderr, "register completions: %v\n", err)
		}
	}

	return rootCmd
}

func newConfigCmd(cfg *launcher.Config, stdout io.Writer) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect launcher configuration",
		Args:  cobra.NoArgs,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := cfg.Effective()
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(effectiveConfig{
				Interpreter: f.Interpreter,
				Script:      f.Script,
				Selected:    f.Interpreter.Resolve(launcher.FileExists),
			})
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			_, err = stdout.Write(out)

			return err
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(launcher.Schema(), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}

			out = append(out, '\n')

			_, err = stdout.Write(out)

			return err
		},
	}

	configCmd.AddCommand(showCmd, schemaCmd)

	return configCmd
}

// effectiveConfig is the output of "config show".
type effectiveConfig struct {
	Interpreter launcher.Interpreter `yaml:"interpreter"`
	Script      string               `yaml:"script"`
	// Selected is the interpreter a launch would use right now.
	Selected string `yaml:"selected"`
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	var output string

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.Get()

			switch output {
			case "text":
				_, err := fmt.Fprintln(stdout, info.String())

				return err

			case "yaml":
				out, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("encoding version: %w", err)
				}

				_, err = stdout.Write(out)

				return err
			}

			return fmt.Errorf("unknown output format %q", output)
		},
	}

	versionCmd.Flags().StringVarP(&output, "output", "o", "text", "output format, one of: [text yaml]")

	return versionCmd
}

func registerVersionCompletions(versionCmd *cobra.Command) error {
	err := versionCmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"text", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering output completion: %w", err)
	}

	return nil
}
