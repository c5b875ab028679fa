package cli

import (
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/pressly/mongotest"
)

func newImageFlag(s *string) ff.FlagConfig {
	return ff.FlagConfig{
		LongName:    "image",
		Usage:       "MongoDB image; tags >= 5 use mongosh, older tags the legacy mongo shell",
		Value:       ffval.NewValueDefault(s, mongotest.DefaultImage),
		Placeholder: "string",
	}
}

func newUsernameFlag(s *string) ff.FlagConfig {
	return ff.FlagConfig{
		LongName:    "username",
		Usage:       "root username, requires --password",
		NoDefault:   true,
		Value:       ffval.NewValue(s),
		Placeholder: "string",
	}
}

func newPasswordFlag(s *string) ff.FlagConfig {
	return ff.FlagConfig{
		LongName:    "password",
		Usage:       "root password, requires --username",
		NoDefault:   true,
		Value:       ffval.NewValue(s),
		Placeholder: "string",
	}
}

func newCountFlag(n *int) ff.FlagConfig {
	return ff.FlagConfig{
		LongName:    "count",
		Usage:       "number of independent instances to start",
		Value:       ffval.NewValueDefault(n, 1),
		Placeholder: "int",
	}
}

func newVerifyFlag(b *bool) ff.FlagConfig {
	return ff.FlagConfig{
		LongName: "verify",
		Usage:    "ping the primary from the host before printing connection strings",
		Value:    ffval.NewValueDefault(b, true),
	}
}

func newEngineFlag(s *string) ff.FlagConfig {
	return ff.FlagConfig{
		LongName:    "engine",
		Usage:       "container engine: testcontainers or dockertest",
		Value:       ffval.NewValueDefault(s, engineTestcontainers),
		Placeholder: "string",
	}
}

func newVerboseFlag(b *bool) ff.FlagConfig {
	return ff.FlagConfig{
		ShortName: 'v',
		LongName:  "verbose",
		Usage:     "log container and replica set progress",
		Value:     ffval.NewValue(b),
	}
}

func newVersionFlag(b *bool) ff.FlagConfig {
	return ff.FlagConfig{
		LongName: "version",
		Usage:    "print version and exit",
		Value:    ffval.NewValue(b),
	}
}

func newStopOnlyFlag(b *bool) ff.FlagConfig {
	return ff.FlagConfig{
		LongName: "stop-only",
		Usage:    "stop managed containers without removing them",
		Value:    ffval.NewValue(b),
	}
}

func mustAddFlags(fs *ff.FlagSet, cfgs ...ff.FlagConfig) {
	for _, cfg := range cfgs {
		if _, err := fs.AddFlag(cfg); err != nil {
			panic(err)
		}
	}
}
