package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thrasher-corp/strategyfit/apiserver"
	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/config"
	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/urfave/cli/v2"
)

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "runs the parameter search over one or more price files until each converges or the call cap is reached",
	ArgsUsage: "<pricefile> [pricefile...]",
	Action:    search,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "once",
			Usage: "makes a single search call per file instead of searching until convergence",
		},
	},
}

var signalCommand = &cli.Command{
	Name:      "signal",
	Usage:     "evaluates the live BUY, SELL or HOLD signal for a price file",
	ArgsUsage: "<pricefile>",
	Action:    signal,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "kind",
			Usage: "the strategy kind to evaluate, defaults to the symbol's optimal kind",
		},
		&cli.Float64Flag{
			Name:  "quote",
			Usage: "a live quote estimate that replaces the newest close",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "records the resulting BUY or SELL against the live positions",
		},
	},
}

var positionCommand = &cli.Command{
	Name:      "position",
	Usage:     "manages live positions",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "lists every open live position",
			Action: listPositions,
		},
		{
			Name:      "record",
			Usage:     "records an executed BUY or SELL",
			ArgsUsage: "<symbol> <kind> <action>",
			Action:    recordPosition,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "symbol",
					Usage: "the instrument symbol",
				},
				&cli.StringFlag{
					Name:  "kind",
					Usage: "the strategy kind holding the position",
				},
				&cli.StringFlag{
					Name:  "action",
					Usage: "BUY or SELL",
				},
			},
		},
	},
}

var registryCommand = &cli.Command{
	Name:      "registry",
	Usage:     "inspects stored search state",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "lists every stored selector",
			Action: listSelectors,
		},
		{
			Name:      "show",
			Usage:     "shows the stored selector of a symbol",
			ArgsUsage: "<symbol>",
			Action:    showSelector,
		},
	},
}

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "serves search, signal, registry and position requests over REST",
	Action: serve,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "the listen address, defaults to the configured address",
		},
	},
}

var migrateCommand = &cli.Command{
	Name:      "migrate",
	Usage:     "runs a database migration command such as up, down, status or version",
	ArgsUsage: "[command] [args]",
	Action:    migrate,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "the migration folder, defaults to the configured folder. Relative folders resolve from the working directory",
		},
	},
}

var configCommand = &cli.Command{
	Name:      "config",
	Usage:     "manages the config file",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "writes a default config file to --config",
			Action: generateConfig,
		},
		{
			Name:   "show",
			Usage:  "prints the validated config",
			Action: showConfig,
		},
	},
}

func search(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	results := make([]apiserver.SearchResponse, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		series, err := prices.LoadFile(path, s.cfg.DataSettings.MaxBars)
		if err != nil {
			return err
		}
		resp := apiserver.SearchResponse{Symbol: series.Symbol}
		if c.Bool("once") {
			outcome, err := s.engine.SearchOutcome(c.Context, series)
			if err != nil {
				return err
			}
			resp.Calls = 1
			resp.Converged = outcome.Converged
			resp.Kind = outcome.Kind
			resp.Params = outcome.Params
			resp.Balance = outcome.Balance
		} else {
			resp.Calls, resp.Converged, err = s.engine.Optimise(c.Context, series)
			if err != nil {
				return err
			}
		}
		sel, err := s.store.Load(c.Context, series.Symbol)
		if err != nil {
			return err
		}
		resp.Optimal = sel.Optimal
		results = append(results, resp)
	}
	jsonOutput(results)
	return nil
}

func signal(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	series, err := prices.LoadFile(c.Args().First(), s.cfg.DataSettings.MaxBars)
	if err != nil {
		return err
	}
	if c.IsSet("quote") {
		series, err = series.WithQuote(c.Float64("quote"))
		if err != nil {
			return err
		}
	}
	resp := apiserver.SignalResponse{Symbol: series.Symbol}
	var action base.Action
	if c.IsSet("kind") {
		resp.Kind, err = strategies.ParseKind(c.String("kind"))
		if err != nil {
			return err
		}
		action, err = s.engine.SignalFor(c.Context, series, resp.Kind)
	} else {
		resp.Kind, action, err = s.engine.Signal(c.Context, series)
	}
	if err != nil {
		return err
	}
	resp.Action = action.String()
	if c.Bool("record") {
		if err = s.positions.Record(series.Symbol, resp.Kind, action); err != nil {
			return err
		}
	}
	jsonOutput(resp)
	return nil
}

func listPositions(_ *cli.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	jsonOutput(s.positions.List())
	return nil
}

func recordPosition(c *cli.Context) error {
	if c.NArg() == 0 && c.NumFlags() == 0 {
		return cli.ShowSubcommandHelp(c)
	}

	var symbol string
	if c.IsSet("symbol") {
		symbol = c.String("symbol")
	} else {
		symbol = c.Args().First()
	}

	var kindText string
	if c.IsSet("kind") {
		kindText = c.String("kind")
	} else {
		kindText = c.Args().Get(1)
	}
	kind, err := strategies.ParseKind(kindText)
	if err != nil {
		return err
	}

	var actionText string
	if c.IsSet("action") {
		actionText = c.String("action")
	} else {
		actionText = c.Args().Get(2)
	}
	action, err := base.ParseAction(actionText)
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	if err = s.positions.Record(strings.TrimSpace(symbol), kind, action); err != nil {
		return err
	}
	jsonOutput(s.positions.List())
	return nil
}

func listSelectors(c *cli.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	selectors, err := s.store.List(c.Context)
	if err != nil {
		return err
	}
	jsonOutput(selectors)
	return nil
}

func showSelector(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	sel, err := s.store.Load(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	jsonOutput(sel)
	return nil
}

func serve(c *cli.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	srv, err := apiserver.New(s.engine, s.store, s.positions)
	if err != nil {
		return err
	}
	addr := s.cfg.APISettings.ListenAddress
	if c.IsSet("listen") {
		addr = c.String("listen")
	}
	return srv.ListenAndServe(c.Context, addr)
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Errorln(log.DatabaseMgr, closeErr)
		}
	}()
	dir := cfg.Database.MigrationDir
	if c.IsSet("dir") {
		dir = c.String("dir")
	}
	args := c.Args().Slice()
	var command, extra string
	if len(args) > 0 {
		command = args[0]
		extra = strings.Join(args[1:], " ")
	}
	return database.Migrate(db, dir, command, extra)
}

func generateConfig(_ *cli.Context) error {
	if configPath == "" {
		configPath = filepath.Join(dataDir, config.DefaultFileName)
	}
	cfg := config.GenerateDefault(dataDir)
	if err := cfg.SaveConfig(configPath); err != nil {
		return err
	}
	fmt.Printf("default config written to %s\n", configPath)
	return nil
}

func showConfig(_ *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jsonOutput(cfg)
	return nil
}
