package cli

import (
	"context"
	"fmt"

	"github.com/peterbourgon/ff/v4"
	"go.uber.org/multierr"
)

type pruneConfig struct {
	stopOnly bool
}

func newPruneCommand(st *state, parent *ff.FlagSet) *ff.Command {
	cfg := new(pruneConfig)
	fs := ff.NewFlagSet("prune").SetParent(parent)
	mustAddFlags(fs,
		newStopOnlyFlag(&cfg.stopOnly),
	)
	return &ff.Command{
		Name:      "prune",
		Usage:     "mongotest prune [flags]",
		ShortHelp: "remove containers left behind by mongotest",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			return runPrune(ctx, st, cfg)
		},
	}
}

func runPrune(ctx context.Context, st *state, cfg *pruneConfig) (retErr error) {
	p, err := st.newPruner(st.logger())
	if err != nil {
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, p.Close())
	}()
	if cfg.stopOnly {
		if err := p.StopManaged(ctx); err != nil {
			return err
		}
		fmt.Fprintln(st.stdout, "stopped managed containers")
		return nil
	}
	n, err := p.RemoveManaged(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "removed %d containers\n", n)
	return nil
}
