package engine

import (
	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"
)

type ScoredMove struct {
	Move  dragontoothmg.Move
	Score float64
}

// Filter scores every legal move one ply ahead and drops blunders. On the
// engine's own turn a blunder loses more than BlunderThreshold against
// baseScore; on the opponent's turn it gains the engine more than that. The
// result keeps legal-move order unless CandidateLimit ranks and truncates it.
func (e *Evaluator) Filter(b *dragontoothmg.Board, baseScore float64, ownTurn bool) []ScoredMove {
	kept, _ := e.filter(b, baseScore, ownTurn)
	return kept
}

func (e *Evaluator) filter(b *dragontoothmg.Board, baseScore float64, ownTurn bool) (kept []ScoredMove, scored int) {
	w := &e.Weights
	moves := b.GenerateLegalMoves()
	kept = make([]ScoredMove, 0, len(moves))

	threshold := w.BlunderThreshold
	dropOwn := ownTurn && w.FilterOwnBlunders
	dropTheirs := !ownTurn && w.FilterOpponentBlunders

	for _, m := range moves {
		release := play(b, m)
		score := e.Evaluate(b)
		release()

		delta := score - baseScore
		if dropOwn && delta < -threshold {
			continue
		}
		if dropTheirs && delta > threshold {
			continue
		}
		kept = append(kept, ScoredMove{Move: m, Score: score})
	}

	if w.CandidateLimit > 0 && len(kept) > w.CandidateLimit {
		slices.SortStableFunc(kept, func(x, y ScoredMove) bool {
			if ownTurn {
				return x.Score > y.Score
			}
			return x.Score < y.Score
		})
		kept = kept[:w.CandidateLimit]
	}
	return kept, len(moves)
}
