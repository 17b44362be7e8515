package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	stateFlag    = "state"
	rankingsFlag = "rankings"
	leavesFlag   = "leaves"
	seedFlag     = "seed"
	winnerFlag   = "winner"
	historyFlag  = "history-limit"
)

var build string
var semanticVersion = "v0.1.0-dev" + build

func newApp() *cli.App {
	stateFile := func() cli.Flag {
		return &cli.StringFlag{
			Name:     stateFlag,
			Aliases:  []string{"s"},
			Usage:    "Path to the JSON session state file",
			Required: true,
		}
	}
	historyLimit := func() cli.Flag {
		return &cli.IntFlag{
			Name:  historyFlag,
			Usage: "Keep at most this many undo snapshots (0 keeps all)",
		}
	}

	return &cli.App{
		Name:    "bracketctl",
		Usage:   "Run a single-elimination bracket from the command line",
		Version: semanticVersion,
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Generate and seed a bracket from a rankings YAML file",
				Flags: []cli.Flag{
					stateFile(),
					historyLimit(),
					&cli.StringFlag{
						Name:     rankingsFlag,
						Aliases:  []string{"r"},
						Usage:    "YAML file with a competitors map of name to points",
						Required: true,
					},
					&cli.IntFlag{
						Name:  leavesFlag,
						Usage: "Number of bracket slots (0 uses the number of competitors)",
					},
					&cli.Int64Flag{
						Name:  seedFlag,
						Usage: "Random seed for a reproducible bracket shape",
					},
				},
				Action: func(cCtx *cli.Context) error {
					var seed *int64
					if cCtx.IsSet(seedFlag) {
						v := cCtx.Int64(seedFlag)
						seed = &v
					}
					return buildCommand(cCtx.App.Writer, buildOptions{
						statePath:    cCtx.String(stateFlag),
						rankingsPath: cCtx.String(rankingsFlag),
						leaves:       cCtx.Int(leavesFlag),
						seed:         seed,
						historyLimit: cCtx.Int(historyFlag),
					})
				},
			},
			{
				Name:  "matchups",
				Usage: "Print the matchups ready to be decided",
				Flags: []cli.Flag{stateFile()},
				Action: func(cCtx *cli.Context) error {
					return matchupsCommand(cCtx.App.Writer, cCtx.String(stateFlag))
				},
			},
			{
				Name:  "advance",
				Usage: "Record winners of ready matchups",
				Flags: []cli.Flag{
					stateFile(),
					historyLimit(),
					&cli.StringSliceFlag{
						Name:     winnerFlag,
						Aliases:  []string{"w"},
						Usage:    "Winning competitor (repeatable)",
						Required: true,
					},
				},
				Action: func(cCtx *cli.Context) error {
					return advanceCommand(cCtx.App.Writer, cCtx.String(stateFlag), cCtx.StringSlice(winnerFlag), cCtx.Int(historyFlag))
				},
			},
			{
				Name:  "revert",
				Usage: "Undo the most recent advancement",
				Flags: []cli.Flag{stateFile(), historyLimit()},
				Action: func(cCtx *cli.Context) error {
					return revertCommand(cCtx.App.Writer, cCtx.String(stateFlag), cCtx.Int(historyFlag))
				},
			},
			{
				Name:  "show",
				Usage: "Print the bracket, its state and the winner if decided",
				Flags: []cli.Flag{
					stateFile(),
					&cli.BoolFlag{
						Name:  "tree",
						Usage: "draw the bracket as a text tree instead of YAML",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return showCommand(cCtx.App.Writer, cCtx.String(stateFlag), cCtx.Bool("tree"))
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
