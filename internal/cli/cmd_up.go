package cli

import (
	"context"
	"fmt"

	"github.com/peterbourgon/ff/v4"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/pressly/mongotest"
	"github.com/pressly/mongotest/internal/mongoping"
)

type upConfig struct {
	image    string
	username string
	password string
	count    int
	verify   bool
	engine   string
}

func newUpCommand(st *state, parent *ff.FlagSet) *ff.Command {
	cfg := new(upConfig)
	fs := ff.NewFlagSet("up").SetParent(parent)
	mustAddFlags(fs,
		newImageFlag(&cfg.image),
		newUsernameFlag(&cfg.username),
		newPasswordFlag(&cfg.password),
		newCountFlag(&cfg.count),
		newVerifyFlag(&cfg.verify),
		newEngineFlag(&cfg.engine),
	)
	return &ff.Command{
		Name:      "up",
		Usage:     "mongotest up [flags]",
		ShortHelp: "start MongoDB replica-set nodes until interrupted",
		LongHelp: "Start one or more single-node MongoDB replica sets in Docker, print one connection " +
			"string per line, and terminate them on CTRL+C.",
		Flags: fs,
		Exec: func(ctx context.Context, args []string) error {
			return runUp(ctx, st, cfg)
		},
	}
}

func runUp(ctx context.Context, st *state, cfg *upConfig) (retErr error) {
	if cfg.count < 1 {
		return fmt.Errorf("count must be at least 1: %d", cfg.count)
	}
	opts := []mongotest.Option{
		mongotest.WithLogger(st.logger()),
	}
	if cfg.username != "" {
		opts = append(opts, mongotest.WithUsername(cfg.username))
	}
	if cfg.password != "" {
		opts = append(opts, mongotest.WithPassword(cfg.password))
	}
	e, err := st.containerEngine(cfg.engine)
	if err != nil {
		return err
	}
	if e != nil {
		opts = append(opts, mongotest.WithEngine(e))
	}
	mdb, err := mongotest.New(cfg.image, opts...)
	if err != nil {
		return err
	}

	containers := make([]*mongotest.Container, cfg.count)
	defer func() {
		for _, c := range containers {
			if c != nil {
				retErr = multierr.Append(retErr, c.Terminate(context.WithoutCancel(ctx)))
			}
		}
	}()
	g, gctx := errgroup.WithContext(ctx)
	for i := range containers {
		g.Go(func() error {
			c, err := mdb.Start(gctx)
			if err != nil {
				return err
			}
			containers[i] = c
			if cfg.verify {
				return mongoping.WaitPrimary(gctx, c.ConnectionString())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range containers {
		fmt.Fprintln(st.stdout, c.ConnectionString())
	}
	fmt.Fprintln(st.stderr, "press CTRL+C to terminate")
	<-ctx.Done()
	return nil
}
