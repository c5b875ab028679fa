package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v4"
)

func run(ctx context.Context, args []string, opts ...Options) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic: %v", r)
		}
	}()
	st, err := newStateWithDefaults(opts...)
	if err != nil {
		return err
	}
	if err := loadEnvFile(); err != nil {
		return err
	}

	root, rootFlags := newRootCommand(st)
	// Add subcommands
	commands := []func(*state, *ff.FlagSet) *ff.Command{
		newUpCommand,
		newPruneCommand,
	}
	for _, cmd := range commands {
		root.Subcommands = append(root.Subcommands, cmd(st, rootFlags))
	}

	// Parse the flags and return help if requested.
	if err := root.Parse(
		args,
		ff.WithEnvVarPrefix(envVarPrefix), // Support environment variables for all flags
	); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(st.stderr, "\n%s\n", createHelp(root))
			return nil
		}
		return err
	}
	if err := root.Run(ctx); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(st.stderr, "\n%s\n", createHelp(root))
			return nil
		}
		return err
	}
	return nil
}

func newStateWithDefaults(opts ...Options) (*state, error) {
	state := &state{}
	for _, opt := range opts {
		if err := opt.apply(state); err != nil {
			return nil, err
		}
	}
	// Set defaults if not set by the caller
	if state.stdout == nil {
		state.stdout = os.Stdout
	}
	if state.stderr == nil {
		state.stderr = os.Stderr
	}
	if state.version == "" {
		state.version = "devel"
	}
	if state.newPruner == nil {
		state.newPruner = newDockerPruner
	}
	return state, nil
}
