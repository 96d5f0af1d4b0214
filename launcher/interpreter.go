package launcher

import "os"

const (
	// DefaultPreferredInterpreter is the Python bundled with an Unreal Engine
	// install.
	DefaultPreferredInterpreter = `C:\Program Files\Epic Games\UE_5.3\Engine\Binaries\ThirdParty\Python3\Win64\python.exe`
	// DefaultFallbackInterpreter is looked up on PATH when the preferred
	// interpreter is absent.
	DefaultFallbackInterpreter = "python"
)

// Interpreter selects the program that runs the analysis script.
type Interpreter struct {
	// Preferred is an absolute path, used only when it exists.
	Preferred string `json:"preferred,omitempty" yaml:"preferred,omitempty"`
	// Fallback is a bare program name resolved through the search path.
	// It is never checked before the process is started.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// DefaultInterpreter returns the built-in interpreter selection.
func DefaultInterpreter() Interpreter {
	return Interpreter{
		Preferred: DefaultPreferredInterpreter,
		Fallback:  DefaultFallbackInterpreter,
	}
}

// Resolve returns Preferred when exists reports it present and Fallback
// otherwise. An empty Fallback resolves to [DefaultFallbackInterpreter].
func (i Interpreter) Resolve(exists func(string) bool) string {
	if i.Preferred != "" && exists(i.Preferred) {
		return i.Preferred
	}

	if i.Fallback == "" {
		return DefaultFallbackInterpreter
	}

	return i.Fallback
}

// FileExists reports whether path names an existing filesystem entry.
func FileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
