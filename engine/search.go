package engine

import (
	"math"

	"github.com/dylhunn/dragontoothmg"
	"go.uber.org/zap"
)

// SearchStats counts the work done by one decision.
type SearchStats struct {
	Nodes       uint64
	Evaluations uint64
	MemoHits    uint64
	MemoStores  uint64
	Filtered    uint64
}

// Searcher runs a fixed-depth minimax over filtered candidates. The engine
// maximizes on its own turns and the modeled opponent minimizes.
type Searcher struct {
	Eval      *Evaluator
	Memo      *Memo
	LeafDepth int
	Stats     SearchStats

	log *zap.SugaredLogger
}

func NewSearcher(eval *Evaluator, memo *Memo, leafDepth int, log *zap.SugaredLogger) *Searcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Searcher{Eval: eval, Memo: memo, LeafDepth: leafDepth, log: log}
}

func (s *Searcher) ResetStats() {
	s.Stats = SearchStats{}
}

// Search returns the best move for the side to move and its backed-up score.
// A node without candidates yields NullMove with the static score. The board
// is restored before Search returns.
func (s *Searcher) Search(b *dragontoothmg.Board, depth int, ownTurn bool) ScoredMove {
	s.Stats.Nodes++
	key := PositionKey(b)
	if s.Memo != nil {
		if hit, ok := s.Memo.Probe(key, depth); ok {
			s.Stats.MemoHits++
			return hit
		}
	}

	baseScore := s.Eval.Evaluate(b)
	candidates, scored := s.Eval.filter(b, baseScore, ownTurn)
	s.Stats.Evaluations += uint64(scored) + 1
	s.Stats.Filtered += uint64(scored - len(candidates))

	if len(candidates) == 0 {
		return ScoredMove{Move: NullMove, Score: baseScore}
	}

	best := ScoredMove{Move: candidates[0].Move, Score: math.Inf(-1)}
	if !ownTurn {
		best.Score = math.Inf(1)
	}
	for _, cand := range candidates {
		score := cand.Score
		if depth > s.LeafDepth {
			score = s.child(b, cand.Move, depth-1, !ownTurn).Score
		}
		if (ownTurn && score > best.Score) || (!ownTurn && score < best.Score) {
			best = ScoredMove{Move: cand.Move, Score: score}
		}
	}

	if s.Memo != nil {
		s.Memo.Store(key, best, depth)
		s.Stats.MemoStores++
	}
	return best
}

func (s *Searcher) child(b *dragontoothmg.Board, m dragontoothmg.Move, depth int, ownTurn bool) ScoredMove {
	release := play(b, m)
	defer release()
	return s.Search(b, depth, ownTurn)
}

// BestOnePly returns the legal move with the best one-ply score for the
// engine, ignoring the blunder filter. Ties keep the first move.
func (s *Searcher) BestOnePly(b *dragontoothmg.Board) (ScoredMove, bool) {
	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		return ScoredMove{}, false
	}
	best := ScoredMove{Move: moves[0], Score: math.Inf(-1)}
	for _, m := range moves {
		release := play(b, m)
		score := s.Eval.Evaluate(b)
		release()
		s.Stats.Evaluations++
		if score > best.Score {
			best = ScoredMove{Move: m, Score: score}
		}
	}
	return best, true
}
