package cli

import (
	"context"
	"fmt"

	"github.com/peterbourgon/ff/v4"
)

// rootConfig holds the flags shared by every command. Subcommand flag sets use the root flag set
// as their parent, so "mongotest up -v" works as well as "mongotest -v up".
type rootConfig struct {
	verbose bool
	version bool
}

func newRootCommand(st *state) (*ff.Command, *ff.FlagSet) {
	fs := ff.NewFlagSet("mongotest")
	mustAddFlags(fs,
		newVerboseFlag(&st.root.verbose),
		newVersionFlag(&st.root.version),
	)
	root := &ff.Command{
		Name:  "mongotest",
		Usage: "mongotest <command> [flags]",
		Flags: fs,
		Exec: func(ctx context.Context, args []string) error {
			if st.root.version {
				fmt.Fprintf(st.stdout, "mongotest version: %s\n", st.version)
				return nil
			}
			return ff.ErrHelp
		},
	}
	return root, fs
}
