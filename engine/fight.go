package engine

import (
	"math"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"
)

// ResolveFight estimates the material outcome of an exchange on the square of
// piece. protectors are the defender's pieces reaching the square, attackers
// the opponent's. Negative results are expected losses, positive results are
// a bonus for spare defenders. The input slices are not modified.
func ResolveFight(piece dragontoothmg.Piece, protectors, attackers []dragontoothmg.Piece, pieceSideToMove bool, w *Weights) float64 {
	nbProtectors, nbAttackers := len(protectors), len(attackers)

	defenders := make([]dragontoothmg.Piece, 0, nbProtectors+1)
	if w.PieceLeadsExchange {
		sorted := slices.Clone(protectors)
		slices.Sort(sorted)
		defenders = append(defenders, piece)
		defenders = append(defenders, sorted...)
	} else {
		defenders = append(defenders, protectors...)
		defenders = append(defenders, piece)
		slices.Sort(defenders)
	}
	attacking := slices.Clone(attackers)
	slices.Sort(attacking)

	var fight, spare float64
	if nbProtectors >= nbAttackers {
		fight = sumValues(attacking) - sumValues(defenders[:nbAttackers])
		spare = spareCurve(w.SpareCurve, nbProtectors-nbAttackers) *
			PieceValue(defenders[nbAttackers]) * w.SpareDefenseWeight
	} else {
		fight = sumValues(attacking[:nbProtectors]) - sumValues(defenders)
	}

	if pieceSideToMove && w.DefenderTempoWeight > 0 {
		fight *= w.DefenderTempoWeight
	}
	return math.Min(0, fight) + spare
}

func sumValues(pieces []dragontoothmg.Piece) float64 {
	var total float64
	for _, p := range pieces {
		total += PieceValue(p)
	}
	return total
}

func spareCurve(curve string, n int) float64 {
	if curve == SpareSqrt {
		return math.Sqrt(float64(n))
	}
	return float64(n)
}
