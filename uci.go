package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"skirmish/engine"
	"skirmish/logx"

	"github.com/dylhunn/dragontoothmg"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const defaultRemainingMs = 300000

func main() {
	cmd := &cli.Command{
		Name:  "skirmish-uci",
		Usage: "heuristic chess agent speaking UCI on stdin/stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Value:   engine.DefaultProfile,
				Usage:   "agent profile (" + strings.Join(engine.ProfileNames(), ", ") + ")",
				Sources: cli.EnvVars("SKIRMISH_PROFILE"),
			},
			&cli.StringFlag{
				Name:    "weights",
				Usage:   "JSON file overriding the profile weights",
				Sources: cli.EnvVars("SKIRMISH_WEIGHTS"),
			},
			&cli.IntFlag{
				Name:    "memo-size",
				Value:   engine.DefaultMemoSize,
				Usage:   "maximum number of memoized positions",
				Sources: cli.EnvVars("SKIRMISH_MEMO_SIZE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("SKIRMISH_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Sources: cli.EnvVars("SKIRMISH_LOG_JSON"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logx.New(logx.Config{Level: c.String("log-level"), JSON: c.Bool("log-json")})
			defer log.Sync()

			profile, err := engine.LookupProfile(c.String("profile"))
			if err != nil {
				return err
			}
			if path := c.String("weights"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open weights: %w", err)
				}
				profile.Weights, err = engine.LoadWeights(f, profile.Weights)
				f.Close()
				if err != nil {
					return err
				}
			}

			s, err := newUCISession(os.Stdin, os.Stdout, profile, int(c.Int("memo-size")), log)
			if err != nil {
				return err
			}
			return s.loop()
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type uciSession struct {
	in  io.Reader
	out io.Writer
	log *zap.SugaredLogger

	profile  engine.Profile
	memoSize int
	agent    *engine.Agent
	board    dragontoothmg.Board
}

func newUCISession(in io.Reader, out io.Writer, profile engine.Profile, memoSize int, log *zap.SugaredLogger) (*uciSession, error) {
	s := &uciSession{in: in, out: out, log: log, profile: profile, memoSize: memoSize}
	if err := s.rebuildAgent(); err != nil {
		return nil, err
	}
	s.board = dragontoothmg.ParseFen(engine.StartFEN)
	return s, nil
}

func (s *uciSession) rebuildAgent() error {
	agent, err := engine.NewAgent(s.profile, engine.WithLogger(s.log), engine.WithMemoSize(s.memoSize))
	if err != nil {
		return err
	}
	s.agent = agent
	return nil
}

func (s *uciSession) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *uciSession) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *uciSession) loop() error {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.println("id name skirmish " + s.profile.Name)
			s.println("id author skirmish")
			s.printf("option name Profile type combo default %s", s.profile.Name)
			for _, name := range engine.ProfileNames() {
				s.printf(" var %s", name)
			}
			s.println()
			s.printf("option name BlunderThreshold type string default %g\n", s.profile.Weights.BlunderThreshold)
			s.printf("option name MemoSize type spin default %d min 1 max %d\n", s.memoSize, 1<<24)
			s.println("uciok")
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.board = dragontoothmg.ParseFen(engine.StartFEN)
			s.agent.NewGame()
		case "position":
			s.position(tokens[1:])
		case "go":
			s.goCommand(tokens[1:])
		case "eval":
			s.eval()
		case "setoption":
			s.setOption(tokens[1:])
		case "stop":
			// searches are synchronous; nothing to interrupt
		case "quit":
			return nil
		default:
			s.println("info string Unknown command:", line)
		}
	}
	return scanner.Err()
}

func (s *uciSession) position(args []string) {
	if len(args) == 0 {
		s.println("info string Malformed position command")
		return
	}
	var rest []string
	switch strings.ToLower(args[0]) {
	case "startpos":
		s.board = dragontoothmg.ParseFen(engine.StartFEN)
		rest = args[1:]
	case "fen":
		fields := args[1:]
		end := len(fields)
		for i, tok := range fields {
			if strings.ToLower(tok) == "moves" {
				end = i
				break
			}
		}
		board, err := engine.ParseFEN(strings.Join(fields[:end], " "))
		if err != nil {
			s.println("info string Invalid fen position:", err)
			return
		}
		s.board = board
		rest = fields[end:]
	default:
		s.println("info string Invalid position subcommand")
		return
	}

	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, moveStr := range rest[1:] {
		mv, ok := engine.FindMove(&s.board, strings.ToLower(moveStr))
		if !ok {
			s.println("info string Move", moveStr, "not found for position", s.board.ToFen())
			return
		}
		s.board.Apply(mv)
	}
}

type goParams struct {
	wtime, btime, winc, binc int
	movetime                 int
	depth                    int
}

func parseGo(args []string) (goParams, []string) {
	var p goParams
	var problems []string
	for i := 0; i < len(args); i++ {
		tok := strings.ToLower(args[i])
		var dst *int
		switch tok {
		case "wtime":
			dst = &p.wtime
		case "btime":
			dst = &p.btime
		case "winc":
			dst = &p.winc
		case "binc":
			dst = &p.binc
		case "movetime":
			dst = &p.movetime
		case "depth":
			dst = &p.depth
		case "infinite":
			continue
		default:
			problems = append(problems, "Unknown go subcommand "+tok)
			continue
		}
		if i+1 >= len(args) {
			problems = append(problems, "Malformed go command option "+tok)
			break
		}
		i++
		v, err := strconv.Atoi(args[i])
		if err != nil {
			problems = append(problems, "Malformed go command option; could not convert "+tok)
			continue
		}
		*dst = v
	}
	return p, problems
}

func (s *uciSession) goCommand(args []string) {
	p, problems := parseGo(args)
	for _, msg := range problems {
		s.println("info string " + msg)
	}

	remaining := p.btime
	if s.board.Wtomove {
		remaining = p.wtime
	}
	if p.movetime > 0 {
		remaining = p.movetime
	}
	if remaining <= 0 {
		remaining = defaultRemainingMs
	}

	var err error
	if p.depth > 0 {
		_, err = s.agent.SearchDepth(&s.board, p.depth)
	} else {
		_, err = s.agent.Think(&s.board, time.Duration(remaining)*time.Millisecond)
	}
	if err != nil {
		s.println("info string", err)
		s.println("bestmove 0000")
		return
	}

	d := s.agent.LastDecision()
	s.printf("info depth %d score %s nodes %d time %d\n",
		d.Depth, uciScore(d.Score, s.profile.Weights.CheckmateScore, d.Depth), d.Stats.Nodes, d.Elapsed.Milliseconds())
	if d.Fallback {
		s.println("info string search had no candidate; played best one-ply move")
	}
	s.println("bestmove " + d.Move.String())
}

// uciScore renders a search score. A backed-up checkmate is reported as
// "mate N", with N the number of moves the search depth allows for it.
func uciScore(score, checkmate float64, depth int) string {
	switch {
	case score >= checkmate:
		return fmt.Sprintf("mate %d", max((depth+1)/2, 1))
	case score <= -checkmate:
		return fmt.Sprintf("mate -%d", max(depth/2, 1))
	}
	return fmt.Sprintf("cp %d", int(score*100))
}

func (s *uciSession) eval() {
	br := s.agent.Explain(&s.board)
	if br.Checkmate {
		s.printf("info string checkmate total %g\n", br.Total)
		return
	}
	s.printf("info string material %g protection %g kingsafety %g pawns %g\n",
		br.Material, br.Protection, br.KingSafety, br.Pawns)
	s.printf("info string totalmaterial %g total %g\n", br.TotalMaterial, br.Total)
}

// setOption handles "name <id> value <x>".
func (s *uciSession) setOption(args []string) {
	var name, value []string
	var cur *[]string
	for _, tok := range args {
		switch strings.ToLower(tok) {
		case "name":
			cur = &name
			continue
		case "value":
			cur = &value
			continue
		}
		if cur != nil {
			*cur = append(*cur, tok)
		}
	}
	id, val := strings.ToLower(strings.Join(name, " ")), strings.Join(value, " ")

	next := s.profile
	nextMemo := s.memoSize
	switch id {
	case "profile":
		p, err := engine.LookupProfile(val)
		if err != nil {
			s.println("info string", err)
			return
		}
		next = p
	case "blunderthreshold":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			s.println("info string Malformed BlunderThreshold value", val)
			return
		}
		next.Weights.BlunderThreshold = v
	case "memosize":
		v, err := strconv.Atoi(val)
		if err != nil || v <= 0 {
			s.println("info string Malformed MemoSize value", val)
			return
		}
		nextMemo = v
	default:
		s.println("info string Unknown option", strings.Join(name, " "))
		return
	}

	prevProfile, prevMemo := s.profile, s.memoSize
	s.profile, s.memoSize = next, nextMemo
	if err := s.rebuildAgent(); err != nil {
		s.profile, s.memoSize = prevProfile, prevMemo
		s.println("info string", err)
		return
	}
	s.log.Debugw("option set", "name", id, "value", val)
}
