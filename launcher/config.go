package launcher

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// File is the YAML configuration file. Empty fields keep their defaults.
type File struct {
	Interpreter Interpreter `json:"interpreter" yaml:"interpreter"`
	Script      string      `json:"script,omitempty" yaml:"script,omitempty"`
}

// DefaultFile returns the built-in configuration.
func DefaultFile() File {
	return File{
		Interpreter: DefaultInterpreter(),
		Script:      DefaultScript,
	}
}

// LoadFile reads a YAML configuration file. Unknown fields are rejected.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return File{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return ParseFile(data)
}

// ParseFile decodes YAML configuration data. Unknown fields are rejected.
func ParseFile(data []byte) (File, error) {
	var f File

	err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField())
	if err != nil {
		return File{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return f, nil
}

// merge overlays the non-empty fields of o onto f.
func (f File) merge(o File) File {
	if o.Interpreter.Preferred != "" {
		f.Interpreter.Preferred = o.Interpreter.Preferred
	}

	if o.Interpreter.Fallback != "" {
		f.Interpreter.Fallback = o.Interpreter.Fallback
	}

	if o.Script != "" {
		f.Script = o.Script
	}

	return f
}

// Schema returns the JSON Schema (Draft 7) describing [File].
func Schema() *jsonschema.Schema {
	str := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "string", Description: desc}
	}

	return &jsonschema.Schema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Title:  "collapse configuration",
		Type:   "object",
		Properties: map[string]*jsonschema.Schema{
			"interpreter": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"preferred": str("Absolute path of the preferred Python interpreter, used when it exists."),
					"fallback":  str("Interpreter name resolved through PATH when the preferred one is absent."),
				},
				AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
			},
			"script": str("File name of the analysis script, relative to the launcher's directory."),
		},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

// Flags holds CLI flag names for launcher configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	ConfigFile     string
	Python         string
	PythonFallback string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for launcher configuration.
//
// Values are layered: built-in defaults, then the file named by ConfigFile,
// then any flag explicitly set on the command line.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewLauncher] to create a [Launcher].
type Config struct {
	flags *pflag.FlagSet

	Flags Flags

	ConfigFile     string
	Python         string
	PythonFallback string
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		ConfigFile:     "config",
		Python:         "python",
		PythonFallback: "python-fallback",
	}

	return f.NewConfig()
}

// RegisterFlags adds launcher flags to the given [*pflag.FlagSet]. The set is
// remembered so that [Config.Effective] can tell explicit flags from defaults.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	c.flags = flags

	flags.StringVar(&c.ConfigFile, c.Flags.ConfigFile, "",
		"YAML configuration file")
	flags.StringVar(&c.Python, c.Flags.Python, DefaultPreferredInterpreter,
		"preferred interpreter path, used when it exists")
	flags.StringVar(&c.PythonFallback, c.Flags.PythonFallback, DefaultFallbackInterpreter,
		"interpreter name looked up on PATH when the preferred one is absent")
}

// RegisterCompletions registers shell completions for launcher flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.ConfigFile,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ConfigFile, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.PythonFallback,
		cobra.FixedCompletions([]string{"python", "python3", "py"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.PythonFallback, err)
	}

	return nil
}

// Effective returns the layered configuration.
func (c *Config) Effective() (File, error) {
	f := DefaultFile()

	if c.ConfigFile != "" {
		loaded, err := LoadFile(c.ConfigFile)
		if err != nil {
			return File{}, err
		}

		f = f.merge(loaded)
	}

	if c.changed(c.Flags.Python) {
		f.Interpreter.Preferred = c.Python
	}

	if c.changed(c.Flags.PythonFallback) {
		f.Interpreter.Fallback = c.PythonFallback
	}

	return f, nil
}

// NewLauncher creates a [Launcher] from the effective configuration.
func (c *Config) NewLauncher(stdout io.Writer, logger *slog.Logger) (*Launcher, error) {
	f, err := c.Effective()
	if err != nil {
		return nil, err
	}

	l := New(stdout, logger)
	l.Interpreter = f.Interpreter
	l.Script = f.Script

	return l, nil
}

func (c *Config) changed(name string) bool {
	if c.flags == nil {
		return false
	}

	return c.flags.Changed(name)
}
