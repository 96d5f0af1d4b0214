package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/collapse/log"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		"error":            {input: "error", want: log.LevelError},
		"warn":             {input: "warn", want: log.LevelWarn},
		"warning alias":    {input: "warning", want: log.LevelWarn},
		"info":             {input: "info", want: log.LevelInfo},
		"debug":            {input: "debug", want: log.LevelDebug},
		"case insensitive": {input: "DEBUG", want: log.LevelDebug},
		"unknown":          {input: "trace", wantErr: true},
		"empty":            {input: "", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lvl, err := log.ParseLevel(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrUnknownLogLevel)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, lvl)
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    log.Format
		wantErr bool
	}{
		"json":             {input: "json", want: log.FormatJSON},
		"logfmt":           {input: "logfmt", want: log.FormatLogfmt},
		"text":             {input: "text", want: log.FormatText},
		"case insensitive": {input: "Logfmt", want: log.FormatLogfmt},
		"unknown":          {input: "yaml", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, err := log.ParseFormat(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrUnknownLogFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, f)
		})
	}
}

func TestLevel_Slog(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, log.LevelError.Slog())
	assert.Equal(t, slog.LevelWarn, log.LevelWarn.Slog())
	assert.Equal(t, slog.LevelInfo, log.LevelInfo.Slog())
	assert.Equal(t, slog.LevelDebug, log.LevelDebug.Slog())
	assert.Equal(t, slog.LevelInfo, log.Level("bogus").Slog())
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check  func(*testing.T, []byte)
		format log.Format
	}{
		"json": {
			format: log.FormatJSON,
			check: func(t *testing.T, out []byte) {
				t.Helper()

				var entry map[string]any

				require.NoError(t, json.Unmarshal(out, &entry))
				assert.Equal(t, "resolved interpreter", entry["msg"])
				assert.Equal(t, "INFO", entry["level"])
				assert.Equal(t, "python", entry["path"])
			},
		},
		"logfmt": {
			format: log.FormatLogfmt,
			check: func(t *testing.T, out []byte) {
				t.Helper()

				s := string(out)
				assert.Contains(t, s, "level=INFO")
				assert.Contains(t, s, `msg="resolved interpreter"`)
				assert.Contains(t, s, "path=python")
			},
		},
		"text": {
			format: log.FormatText,
			check: func(t *testing.T, out []byte) {
				t.Helper()

				s := string(out)
				assert.Contains(t, s, "INFO")
				assert.Contains(t, s, "resolved interpreter")
				assert.Contains(t, s, "path=python")
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := slog.New(log.NewHandler(&buf, log.LevelInfo, tc.format))
			logger.Info("resolved interpreter", slog.String("path", "python"))

			tc.check(t, buf.Bytes())
		})
	}
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level   string
		format  string
		wantErr bool
	}{
		"valid":          {level: "info", format: "json"},
		"invalid level":  {level: "loud", format: "json", wantErr: true},
		"invalid format": {level: "info", format: "xml", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			h, err := log.NewHandlerFromStrings(&buf, tc.level, tc.format)
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrInvalidArgument)
				assert.Nil(t, h)

				return
			}

			require.NoError(t, err)
			slog.New(h).Info("hello")
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		log   func(*slog.Logger)
		level log.Level
		want  bool
	}{
		"warn passes error": {
			level: log.LevelWarn,
			log:   func(l *slog.Logger) { l.Error("spawn failed") },
			want:  true,
		},
		"warn blocks info": {
			level: log.LevelWarn,
			log:   func(l *slog.Logger) { l.Info("spawn failed") },
		},
		"debug passes debug": {
			level: log.LevelDebug,
			log:   func(l *slog.Logger) { l.Debug("spawn failed") },
			want:  true,
		},
		"error blocks warn": {
			level: log.LevelError,
			log:   func(l *slog.Logger) { l.Warn("spawn failed") },
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, format := range []log.Format{log.FormatJSON, log.FormatLogfmt, log.FormatText} {
				var buf bytes.Buffer

				tc.log(slog.New(log.NewHandler(&buf, tc.level, format)))

				if tc.want {
					assert.Contains(t, buf.String(), "spawn failed", "format %s", format)
				} else {
					assert.Empty(t, buf.String(), "format %s", format)
				}
			}
		})
	}
}

func TestDefaultFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, log.FormatLogfmt, log.DefaultFormat(nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, log.FormatLogfmt, log.DefaultFormat(f))
}

func TestConfig_RegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	assert.Equal(t, "warn", cfg.Level)

	require.NoError(t, flags.Parse([]string{"--log-level=debug", "--log-format=json"}))
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	var buf bytes.Buffer

	h, err := cfg.NewHandler(&buf)
	require.NoError(t, err)

	slog.New(h).Debug("argv built")
	assert.Contains(t, buf.String(), `"msg":"argv built"`)
}

func TestConfig_CustomFlagNames(t *testing.T) {
	t.Parallel()

	cfg := log.Flags{Level: "verbosity", Format: "output"}.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	assert.NotNil(t, flags.Lookup("verbosity"))
	assert.NotNil(t, flags.Lookup("output"))
	assert.Nil(t, flags.Lookup("log-level"))
}

func TestConfig_RegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	require.NoError(t, cfg.RegisterCompletions(cmd))

	tcs := map[string][]string{
		"log-level":  log.GetAllLevelStrings(),
		"log-format": log.GetAllFormatStrings(),
	}

	for flag, want := range tcs {
		t.Run(flag, func(t *testing.T) {
			t.Parallel()

			fn, ok := cmd.GetFlagCompletionFunc(flag)
			require.True(t, ok)

			got, directive := fn(cmd, nil, "")
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
			assert.Equal(t, want, got)
		})
	}
}
