package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"sort"
	"strings"
	"time"

	"skirmish/engine"
	"skirmish/logx"
	"skirmish/match"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "skirmish:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "skirmish",
		Usage: "heuristic chess agents: self-play, evaluation and search tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("SKIRMISH_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "emit JSON log lines",
				Sources: cli.EnvVars("SKIRMISH_LOG_JSON"),
			},
		},
		Commands: []*cli.Command{
			selfplayCommand(),
			evalCommand(),
			searchCommand(),
			perftCommand(),
		},
	}
}

func loggerFrom(c *cli.Command) *zap.SugaredLogger {
	return logx.New(logx.Config{Level: c.String("log-level"), JSON: c.Bool("log-json")})
}

func profileFlag(name, value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    name,
		Value:   value,
		Usage:   "profile: " + strings.Join(engine.ProfileNames(), ", "),
		Sources: cli.EnvVars("SKIRMISH_" + strings.ToUpper(name)),
	}
}

func fenFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "fen",
		Value: engine.StartFEN,
		Usage: "position in FEN",
	}
}

// loadProfile resolves a built-in profile and applies an optional JSON
// weights file on top of it.
func loadProfile(name, weightsPath string) (engine.Profile, error) {
	p, err := engine.LookupProfile(name)
	if err != nil {
		return p, err
	}
	if weightsPath == "" {
		return p, nil
	}
	f, err := os.Open(weightsPath)
	if err != nil {
		return p, fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()
	p.Weights, err = engine.LoadWeights(f, p.Weights)
	return p, err
}

func selfplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "selfplay",
		Usage: "play two profiles against each other",
		Flags: []cli.Flag{
			profileFlag("white", engine.DefaultProfile),
			profileFlag("black", "gen3"),
			&cli.StringFlag{Name: "white-weights", Usage: "JSON weights override for white"},
			&cli.StringFlag{Name: "black-weights", Usage: "JSON weights override for black"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "number of games, colors alternate"},
			&cli.DurationFlag{Name: "clock", Value: time.Minute, Usage: "per-side clock, 0 for none"},
			&cli.IntFlag{Name: "max-plies", Value: 300, Usage: "adjudicate a draw after this many plies"},
			&cli.IntFlag{Name: "memo-size", Value: engine.DefaultMemoSize},
			fenFlag(),
			&cli.StringFlag{Name: "pgn", Usage: "append finished games to this file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := loggerFrom(c)
			defer log.Sync()

			agents := make([]*engine.Agent, 2)
			for i, side := range []string{"white", "black"} {
				p, err := loadProfile(c.String(side), c.String(side+"-weights"))
				if err != nil {
					return fmt.Errorf("%s: %w", side, err)
				}
				agents[i], err = engine.NewAgent(p,
					engine.WithLogger(log.With("side", side)),
					engine.WithMemoSize(int(c.Int("memo-size"))))
				if err != nil {
					return fmt.Errorf("%s: %w", side, err)
				}
			}

			cfg := match.Config{
				StartFEN: c.String("fen"),
				Clock:    c.Duration("clock"),
				MaxPlies: int(c.Int("max-plies")),
				Event:    "skirmish selfplay",
				Log:      log,
			}
			results, tally, err := match.PlaySeries(ctx, cfg, agents[0], agents[1], int(c.Int("games")))

			if path := c.String("pgn"); path != "" && len(results) > 0 {
				if werr := appendPGN(path, results); werr != nil {
					log.Errorw("write pgn", "path", path, "error", werr)
				}
			}
			for i, r := range results {
				fmt.Printf("game %d: %s vs %s  %s  %s  plies=%d%s\n",
					i+1, r.White, r.Black, r.Outcome, r.Method, r.Plies, forfeitNote(r))
			}
			names := make([]string, 0, len(tally))
			for name := range tally {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %g\n", name, tally[name])
			}
			return err
		},
	}
}

func forfeitNote(r match.Result) string {
	if r.Forfeit == "" {
		return ""
	}
	return " (" + r.Forfeit + ")"
}

func appendPGN(path string, results []match.Result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, r := range results {
		if _, err := fmt.Fprintf(f, "%s\n\n", r.PGN); err != nil {
			return err
		}
	}
	return nil
}

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "print the evaluation terms of a position",
		Flags: []cli.Flag{
			fenFlag(),
			profileFlag("profile", engine.DefaultProfile),
			&cli.StringFlag{Name: "weights", Usage: "JSON weights override"},
			&cli.StringFlag{Name: "perspective", Usage: "white or black (default: side to move)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := loadProfile(c.String("profile"), c.String("weights"))
			if err != nil {
				return err
			}
			b, err := engine.ParseFEN(c.String("fen"))
			if err != nil {
				return err
			}
			perspective := engine.White
			if !b.Wtomove {
				perspective = engine.Black
			}
			if s := c.String("perspective"); s != "" {
				if perspective, err = engine.ParseColor(s); err != nil {
					return err
				}
			}

			br := engine.NewEvaluator(p.Weights, perspective).Explain(&b)
			fmt.Printf("profile      %s\n", p.Name)
			fmt.Printf("perspective  %s\n", perspective)
			if br.Checkmate {
				fmt.Printf("checkmate    %g\n", br.Total)
				return nil
			}
			fmt.Printf("material     %8.3f  x%g\n", br.Material, p.Weights.Material)
			fmt.Printf("protection   %8.3f  x%g\n", br.Protection, p.Weights.Protection)
			fmt.Printf("king safety  %8.3f  x%g\n", br.KingSafety, p.Weights.KingSafety)
			fmt.Printf("pawns        %8.3f  x%g\n", br.Pawns, p.Weights.Pawns)
			fmt.Printf("on board     %8.0f\n", br.TotalMaterial)
			fmt.Printf("total        %8.3f\n", br.Total)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "run one timed search and print statistics",
		Flags: []cli.Flag{
			fenFlag(),
			profileFlag("profile", engine.DefaultProfile),
			&cli.StringFlag{Name: "weights", Usage: "JSON weights override"},
			&cli.IntFlag{Name: "depth", Value: 2, Usage: "search depth in plies"},
			&cli.IntFlag{Name: "repeat", Value: 1, Usage: "number of searches to run"},
			&cli.IntFlag{Name: "memo-size", Value: engine.DefaultMemoSize},
			&cli.StringFlag{Name: "cpuprofile", Usage: "write CPU profile to file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := loggerFrom(c)
			defer log.Sync()

			p, err := loadProfile(c.String("profile"), c.String("weights"))
			if err != nil {
				return err
			}
			depth := int(c.Int("depth"))
			if depth < 0 {
				return fmt.Errorf("depth must not be negative, got %d", depth)
			}

			if path := c.String("cpuprofile"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				defer func() {
					pprof.StopCPUProfile()
					f.Close()
				}()
			}

			fen := c.String("fen")
			fmt.Printf("search: profile=%s fen=%q depth=%d\n", p.Name, fen, depth)
			startAll := time.Now()
			for i := 0; i < int(c.Int("repeat")); i++ {
				b, err := engine.ParseFEN(fen)
				if err != nil {
					return err
				}
				agent, err := engine.NewAgent(p, engine.WithLogger(log), engine.WithMemoSize(int(c.Int("memo-size"))))
				if err != nil {
					return err
				}
				best, err := agent.SearchDepth(&b, depth)
				if err != nil {
					return err
				}
				d := agent.LastDecision()
				fmt.Printf("iteration %d: bestmove %s score %.3f time=%v nodes=%d evals=%d memohits=%d filtered=%d\n",
					i+1, best.Move.String(), best.Score, d.Elapsed,
					d.Stats.Nodes, d.Stats.Evaluations, d.Stats.MemoHits, d.Stats.Filtered)
			}
			fmt.Printf("total time: %v\n", time.Since(startAll))
			return nil
		},
	}
}

func perftCommand() *cli.Command {
	return &cli.Command{
		Name:  "perft",
		Usage: "count legal move tree leaves",
		Flags: []cli.Flag{
			fenFlag(),
			&cli.IntFlag{Name: "depth", Value: 3},
			&cli.BoolFlag{Name: "divide", Usage: "print per-move node counts at root"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			b, err := engine.ParseFEN(c.String("fen"))
			if err != nil {
				return err
			}
			depth := int(c.Int("depth"))
			if depth <= 0 {
				return fmt.Errorf("depth must be > 0")
			}
			if c.Bool("divide") {
				div := engine.PerftDivide(&b, depth)
				moves := make([]string, 0, len(div))
				for m := range div {
					moves = append(moves, m)
				}
				sort.Strings(moves)
				var sum uint64
				for _, m := range moves {
					fmt.Printf("%s: %d\n", m, div[m])
					sum += div[m]
				}
				fmt.Printf("Total: %d\n", sum)
				return nil
			}
			start := time.Now()
			nodes := engine.Perft(&b, depth)
			elapsed := time.Since(start)
			fmt.Printf("depth %d  nodes %d  time %s  nps %.0f\n", depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())
			return nil
		},
	}
}
