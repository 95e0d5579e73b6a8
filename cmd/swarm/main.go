package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/swarm/internal"
	"github.com/valter-silva-au/swarm/internal/cli"
	"github.com/valter-silva-au/swarm/internal/core"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	envCfg, err := core.LoadEnvConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}
	basePath := app.ResolveBasePath(envCfg)

	a, err := app.NewApp(basePath, envCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing swarm: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}
