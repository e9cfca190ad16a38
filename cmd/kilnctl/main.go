package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set via linker flags.
var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "kilnctl",
		Usage:   "inspect and run the Kiln plugin actions",
		Version: version,
		Flags: []cli.Flag{
			configFlag,
			setFlag,
			logLevelFlag,
		},
		Commands: []*cli.Command{
			commandActions,
			commandRun,
			commandVaults,
			commandSchema,
			commandSubmit,
		},
	}
}

// Commonly used command line flags.
var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "path to the YAML configuration file",
		EnvVars: []string{"KILN_CONFIG"},
	}
	setFlag = &cli.StringSliceFlag{
		Name:  "set",
		Usage: "override a plugin setting, as KEY=VALUE (repeatable)",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (debug, info, warn, error)",
		Value: "warn",
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
