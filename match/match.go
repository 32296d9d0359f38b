// Package match referees games between two players. The dragontoothmg board
// decides move legality; every move is mirrored into a notnil/chess game that
// adjudicates the end of the game and renders the PGN.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skirmish/engine"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
	"go.uber.org/zap"
)

// Clock handed to players when the match runs without a time control.
const untimedRemaining = 5 * time.Minute

var ErrGameDesync = errors.New("referee rejected a move the board accepted")

// Player is satisfied by *engine.Agent.
type Player interface {
	Name() string
	NewGame()
	Think(b *dragontoothmg.Board, remaining time.Duration) (dragontoothmg.Move, error)
}

type Config struct {
	StartFEN string
	// Clock is the per-side budget. Zero disables flag fall.
	Clock time.Duration
	// MaxPlies ends the game as a draw once reached. Zero means no limit.
	MaxPlies int
	Event    string
	Log      *zap.SugaredLogger
}

// Forfeit reasons.
const (
	ForfeitTime    = "time"
	ForfeitIllegal = "illegal move"
	ForfeitNoMove  = "no move"
	AdjudicatedMax = "max plies"
)

type Result struct {
	White, Black string
	Outcome      chess.Outcome
	Method       chess.Method
	Plies        int
	// Forfeit is set when the game ended outside the rules of chess.
	Forfeit  string
	PGN      string
	FinalFEN string
	Clocks   [2]time.Duration
}

// Play runs one game. The context is checked between moves; a search in
// progress is never interrupted.
func Play(ctx context.Context, cfg Config, white, black Player) (Result, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	startFEN := cfg.StartFEN
	if startFEN == "" {
		startFEN = engine.StartFEN
	}
	board, err := engine.ParseFEN(startFEN)
	if err != nil {
		return Result{}, err
	}
	fenOpt, err := chess.FEN(startFEN)
	if err != nil {
		return Result{}, fmt.Errorf("referee: %w", err)
	}
	game := chess.NewGame(fenOpt, chess.UseNotation(chess.UCINotation{}))
	if cfg.Event != "" {
		game.AddTagPair("Event", cfg.Event)
	}
	game.AddTagPair("White", white.Name())
	game.AddTagPair("Black", black.Name())

	white.NewGame()
	black.NewGame()

	res := Result{White: white.Name(), Black: black.Name()}
	res.Clocks = [2]time.Duration{cfg.Clock, cfg.Clock}

	for {
		if err := ctx.Err(); err != nil {
			return finish(res, game), err
		}
		if game.Outcome() != chess.NoOutcome {
			break
		}
		if claimDraw(game) {
			break
		}
		if cfg.MaxPlies > 0 && res.Plies >= cfg.MaxPlies {
			res.Forfeit = AdjudicatedMax
			if err := game.Draw(chess.DrawOffer); err != nil {
				return finish(res, game), fmt.Errorf("referee: %w", err)
			}
			break
		}

		side, mover, color := 0, white, chess.White
		if !board.Wtomove {
			side, mover, color = 1, black, chess.Black
		}
		remaining := untimedRemaining
		if cfg.Clock > 0 {
			remaining = res.Clocks[side]
		}

		start := time.Now()
		mv, err := mover.Think(&board, remaining)
		elapsed := time.Since(start)

		if cfg.Clock > 0 {
			res.Clocks[side] -= elapsed
			if res.Clocks[side] <= 0 {
				log.Infow("flag fell", "player", mover.Name(), "ply", res.Plies)
				res.Forfeit = ForfeitTime
				game.Resign(color)
				break
			}
		}
		if err != nil {
			log.Warnw("player returned no move", "player", mover.Name(), "error", err)
			res.Forfeit = ForfeitNoMove
			game.Resign(color)
			break
		}

		uci := mv.String()
		legal, ok := engine.FindMove(&board, uci)
		if !ok {
			log.Warnw("illegal move", "player", mover.Name(), "move", uci, "fen", board.ToFen())
			res.Forfeit = ForfeitIllegal
			game.Resign(color)
			break
		}
		if err := game.MoveStr(uci); err != nil {
			return finish(res, game), fmt.Errorf("%w: %s: %v", ErrGameDesync, uci, err)
		}
		board.Apply(legal)
		res.Plies++
		log.Debugw("move", "ply", res.Plies, "player", mover.Name(), "move", uci, "elapsed", elapsed)
	}

	res = finish(res, game)
	log.Infow("game over",
		"white", res.White, "black", res.Black,
		"outcome", res.Outcome, "method", res.Method, "plies", res.Plies)
	return res, nil
}

// claimDraw claims threefold repetition or the fifty-move rule as soon as
// either becomes available.
func claimDraw(game *chess.Game) bool {
	for _, m := range game.EligibleDraws() {
		if m == chess.ThreefoldRepetition || m == chess.FiftyMoveRule {
			return game.Draw(m) == nil
		}
	}
	return false
}

func finish(res Result, game *chess.Game) Result {
	res.Outcome = game.Outcome()
	res.Method = game.Method()
	res.PGN = game.String()
	res.FinalFEN = game.Position().String()
	return res
}

// Score returns the points white earned.
func (r Result) Score() float64 {
	switch r.Outcome {
	case chess.WhiteWon:
		return 1
	case chess.BlackWon:
		return 0
	case chess.Draw:
		return 0.5
	}
	return 0.5
}
