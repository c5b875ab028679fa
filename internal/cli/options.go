package cli

import (
	"fmt"
	"io"

	"github.com/pressly/mongotest/engine"
)

// Options are used to configure the command execution and are passed to the Run or Main function.
type Options interface {
	apply(*state) error
}

type optionFunc func(*state) error

func (f optionFunc) apply(s *state) error { return f(s) }

// WithStdout sets the writer for stdout.
func WithStdout(w io.Writer) Options {
	return optionFunc(func(s *state) error {
		if w == nil {
			return fmt.Errorf("stdout cannot be nil")
		}
		if s.stdout != nil {
			return fmt.Errorf("stdout already set")
		}
		s.stdout = w
		return nil
	})
}

// WithStderr sets the writer for stderr.
func WithStderr(w io.Writer) Options {
	return optionFunc(func(s *state) error {
		if w == nil {
			return fmt.Errorf("stderr cannot be nil")
		}
		if s.stderr != nil {
			return fmt.Errorf("stderr already set")
		}
		s.stderr = w
		return nil
	})
}

// WithEngine sets the container engine used by "up". Primarily useful for testing.
func WithEngine(e engine.Engine) Options {
	return optionFunc(func(s *state) error {
		if e == nil {
			return fmt.Errorf("engine cannot be nil")
		}
		if s.engine != nil {
			return fmt.Errorf("engine already set")
		}
		s.engine = e
		return nil
	})
}

// WithVersion sets the version string for the command. This is typically set by the build system
// when the binary is built. It is used to print the version when the --version flag is passed.
func WithVersion(version string) Options {
	return optionFunc(func(s *state) error {
		if version == "" {
			return fmt.Errorf("version cannot be empty")
		}
		if s.version != "" {
			return fmt.Errorf("version already set")
		}
		s.version = version
		return nil
	})
}
