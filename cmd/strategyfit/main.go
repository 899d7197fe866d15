package main

import (
	"context"
	"fmt"
	"os"

	"github.com/thrasher-corp/strategyfit/config"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/signaler"
	"github.com/urfave/cli/v2"
)

var (
	configPath string
	dataDir    string
	verbose    bool
	quiet      bool
)

func main() {
	app := cli.NewApp()
	app.Name = "strategyfit"
	app.EnableBashCompletion = true
	app.Usage = "searches trading strategy parameters per symbol and emits live BUY, SELL or HOLD signals"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       config.DefaultFileName,
			Usage:       "the config file to load, defaults are used when it does not exist",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "datadir",
			Value:       ".",
			Usage:       "the folder default registry, position and database files are kept in",
			Destination: &dataDir,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "enables debug logging",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "disables logging output",
			Destination: &quiet,
		},
	}
	app.Commands = []*cli.Command{
		searchCommand,
		signalCommand,
		positionCommand,
		registryCommand,
		serveCommand,
		migrateCommand,
		configCommand,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Println("strategyfit interrupted")
	}()

	err := app.RunContext(ctx, os.Args)
	cancel()
	if closeErr := log.CloseLogger(); closeErr != nil {
		fmt.Println(closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
