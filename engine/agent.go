package engine

import (
	"errors"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"go.uber.org/zap"
)

var ErrNoLegalMoves = errors.New("no legal moves")

type Option func(*Agent)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Agent) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMemoSize bounds the number of cached positions.
func WithMemoSize(n int) Option {
	return func(a *Agent) {
		a.memoSize = n
	}
}

// Decision describes the last move chosen by Think or SearchDepth.
type Decision struct {
	Move     dragontoothmg.Move
	Score    float64
	Depth    int
	Fallback bool
	Elapsed  time.Duration
	Stats    SearchStats
}

// Agent plays one side of a game with a fixed profile. It is not safe for
// concurrent use.
type Agent struct {
	profile  Profile
	eval     *Evaluator
	memo     *Memo
	searcher *Searcher
	memoSize int
	log      *zap.SugaredLogger

	seated bool
	last   Decision
}

func NewAgent(p Profile, opts ...Option) (*Agent, error) {
	if err := p.Weights.Validate(); err != nil {
		return nil, err
	}
	a := &Agent{
		profile:  p,
		memoSize: DefaultMemoSize,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	memo, err := NewMemo(a.memoSize)
	if err != nil {
		return nil, err
	}
	a.memo = memo
	a.eval = NewEvaluator(p.Weights, White)
	a.searcher = NewSearcher(a.eval, memo, p.Schedule.LeafDepth, a.log)
	return a, nil
}

func (a *Agent) Name() string {
	return a.profile.Name
}

func (a *Agent) Profile() Profile {
	return a.profile
}

func (a *Agent) MemoLen() int {
	return a.memo.Len()
}

// NewGame forgets the cached positions and the side the agent plays.
func (a *Agent) NewGame() {
	a.memo.Clear()
	a.seated = false
	a.last = Decision{}
}

// seat fixes the perspective to the side to move. Cached scores belong to a
// perspective, so switching sides drops them.
func (a *Agent) seat(b *dragontoothmg.Board) {
	side := sideToMove(b)
	if a.seated && side == a.eval.Perspective {
		return
	}
	if a.seated {
		a.log.Debugw("perspective changed mid-game", "from", a.eval.Perspective, "to", side)
		a.memo.Clear()
	}
	a.eval.Perspective = side
	a.seated = true
}

// Think picks a move for the side to move, with a depth chosen from the
// remaining clock time.
func (a *Agent) Think(b *dragontoothmg.Board, remaining time.Duration) (dragontoothmg.Move, error) {
	depth := a.profile.Schedule.DepthFor(remaining)
	d, err := a.decide(b, depth)
	if err != nil {
		return NullMove, err
	}
	a.log.Debugw("think",
		"profile", a.profile.Name,
		"remaining", remaining,
		"depth", depth,
		"move", d.Move.String(),
		"score", d.Score,
		"nodes", d.Stats.Nodes,
		"elapsed", d.Elapsed,
	)
	return d.Move, nil
}

// SearchDepth runs one search at a fixed depth.
func (a *Agent) SearchDepth(b *dragontoothmg.Board, depth int) (ScoredMove, error) {
	d, err := a.decide(b, depth)
	if err != nil {
		return ScoredMove{}, err
	}
	return ScoredMove{Move: d.Move, Score: d.Score}, nil
}

func (a *Agent) decide(b *dragontoothmg.Board, depth int) (Decision, error) {
	if len(b.GenerateLegalMoves()) == 0 {
		return Decision{}, ErrNoLegalMoves
	}
	a.seat(b)

	start := time.Now()
	a.searcher.ResetStats()
	best := a.searcher.Search(b, depth, true)

	d := Decision{Move: best.Move, Score: best.Score, Depth: depth}
	if best.Move == NullMove {
		fallback, _ := a.searcher.BestOnePly(b)
		a.log.Warnw("search found no candidate, using best one-ply move",
			"fen", b.ToFen(), "move", fallback.Move.String(), "score", fallback.Score)
		d.Move, d.Score, d.Fallback = fallback.Move, fallback.Score, true
	}
	d.Elapsed = time.Since(start)
	d.Stats = a.searcher.Stats
	a.last = d
	return d, nil
}

func (a *Agent) LastDecision() Decision {
	return a.last
}

// Explain breaks down the evaluation of b from the agent's perspective, or
// from the side to move if the agent has not played yet.
func (a *Agent) Explain(b *dragontoothmg.Board) Breakdown {
	e := *a.eval
	if !a.seated {
		e.Perspective = sideToMove(b)
	}
	return e.Explain(b)
}
