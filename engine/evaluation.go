package engine

import (
	"math"
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Per-protector bonus of the weighted protection model, indexed by piece.
var protectorBonus = [7]float64{0, 3, 2, 2, 2, 1.5, 1.2}

const castledKingBonus = 4

// Evaluator scores positions from a fixed perspective. It does not mutate the
// board it is given.
type Evaluator struct {
	Weights     Weights
	Perspective Color
}

// Breakdown holds the individual unweighted terms of one evaluation.
type Breakdown struct {
	Checkmate     bool
	Material      float64
	Protection    float64
	KingSafety    float64
	Pawns         float64
	TotalMaterial float64
	Total         float64
}

func NewEvaluator(w Weights, perspective Color) *Evaluator {
	return &Evaluator{Weights: w, Perspective: perspective}
}

func (e *Evaluator) Evaluate(b *dragontoothmg.Board) float64 {
	return e.Explain(b).Total
}

func (e *Evaluator) Explain(b *dragontoothmg.Board) Breakdown {
	w := &e.Weights
	if IsCheckmate(b) {
		score := w.CheckmateScore
		if sideToMove(b) == e.Perspective {
			score = -score
		}
		return Breakdown{Checkmate: true, Total: score}
	}

	var br Breakdown
	br.Material, br.TotalMaterial = e.material(b)

	if w.Protection != 0 {
		tm := BuildThreatMap(b)
		switch w.ProtectionModel {
		case ProtectionTally:
			br.Protection = e.tallyProtection(b, tm)
		case ProtectionWeighted:
			br.Protection = e.weightedProtection(b, tm)
		default:
			br.Protection = e.exchangeProtection(b, tm)
		}
	}

	if w.KingSafety != 0 && br.TotalMaterial >= w.KingSafetyMaterial {
		br.KingSafety = kingPlacement(b, e.Perspective) - kingPlacement(b, e.Perspective.Other())
	}

	if w.Pawns != 0 {
		br.Pawns = e.pawnStructure(b)
	}

	br.Total = (w.Material*br.Material +
		w.Protection*br.Protection +
		w.KingSafety*br.KingSafety +
		w.Pawns*br.Pawns) / w.coefficientSum()
	return br
}

func (e *Evaluator) sign(c Color) float64 {
	if c == e.Perspective {
		return 1
	}
	return -1
}

func (e *Evaluator) material(b *dragontoothmg.Board) (signed, total float64) {
	for _, c := range [2]Color{White, Black} {
		own := bitboardsOf(b, c)
		var sum float64
		for _, pt := range threatOrder {
			sum += float64(bits.OnesCount64(piecesOfType(own, pt))) * PieceValue(pt)
		}
		signed += e.sign(c) * sum
		total += sum
	}
	return signed, total
}

// forEachPiece visits every piece of both colors in type order.
func forEachPiece(b *dragontoothmg.Board, fn func(pt dragontoothmg.Piece, c Color, sq uint8)) {
	for _, c := range [2]Color{White, Black} {
		own := bitboardsOf(b, c)
		for _, pt := range threatOrder {
			for pieces := piecesOfType(own, pt); pieces != 0; pieces &= pieces - 1 {
				fn(pt, c, uint8(bits.TrailingZeros64(pieces)))
			}
		}
	}
}

func (e *Evaluator) exchangeProtection(b *dragontoothmg.Board, tm *ThreatMap) float64 {
	var score float64
	toMove := sideToMove(b)
	forEachPiece(b, func(pt dragontoothmg.Piece, c Color, sq uint8) {
		if pt == dragontoothmg.King {
			return
		}
		fight := ResolveFight(pt, tm.Protectors(sq, c), tm.Attackers(sq, c), c == toMove, &e.Weights)
		score += e.sign(c) * fight
	})
	return score
}

func (e *Evaluator) tallyProtection(b *dragontoothmg.Board, tm *ThreatMap) float64 {
	var score float64
	forEachPiece(b, func(pt dragontoothmg.Piece, c Color, sq uint8) {
		protectors, attackers := tm.Protectors(sq, c), tm.Attackers(sq, c)
		n := len(protectors) - len(attackers)
		v := sumValues(protectors) - sumValues(attackers)
		if n == 0 {
			score -= e.sign(c) * 2 * v
		} else {
			score += e.sign(c) * float64(n) * PieceValue(pt)
		}
	})
	return score
}

func (e *Evaluator) weightedProtection(b *dragontoothmg.Board, tm *ThreatMap) float64 {
	var score float64
	forEachPiece(b, func(pt dragontoothmg.Piece, c Color, sq uint8) {
		for _, p := range tm.Protectors(sq, c) {
			score += e.sign(c) * protectorBonus[p]
		}
		for _, a := range tm.Attackers(sq, c) {
			score -= e.sign(c) * math.Max(0, PieceValue(pt)-PieceValue(a))
		}
	})
	return score
}

// kingPlacement penalizes a king that left its back rank and rewards one
// tucked on a wing.
func kingPlacement(b *dragontoothmg.Board, c Color) float64 {
	kings := bitboardsOf(b, c).Kings
	if kings == 0 {
		return 0
	}
	sq := bits.TrailingZeros64(kings)
	rank, file := sq/8, sq%8
	rankDistance := float64(rank)
	if c == Black {
		rankDistance = float64(7 - rank)
	}
	score := -rankDistance
	if math.Abs(3.5-float64(file))-0.5 > 1 {
		score += castledKingBonus
	}
	return score
}

func (e *Evaluator) pawnStructure(b *dragontoothmg.Board) float64 {
	w := &e.Weights
	own := bitboardsOf(b, e.Perspective)

	kingFile, kingOnWing := 0, false
	if w.PawnModel == PawnKingAware && own.Kings != 0 {
		kingFile = bits.TrailingZeros64(own.Kings) % 8
		kingOnWing = math.Abs(3.5-float64(kingFile)) >= 2.5
	}

	var score float64
	for pawns := own.Pawns; pawns != 0; pawns &= pawns - 1 {
		sq := bits.TrailingZeros64(pawns)
		rank, file := sq/8, sq%8

		advance := rank - w.PawnRankOrigin
		if e.Perspective == Black {
			advance = 7 - w.PawnRankOrigin - rank
		}

		var weight float64
		switch w.PawnModel {
		case PawnCentral:
			weight = w.PawnCentralBase - math.Abs(3.5-float64(file))
		case PawnKingAware:
			if kingOnWing {
				weight = -w.PawnWingWeight
				if absInt(kingFile-file) >= 2 {
					weight = w.PawnWingWeight
				}
			} else {
				weight = w.PawnCentralBase - math.Abs(3.5-float64(file))
			}
		default:
			weight = 1
		}
		score += weight * float64(advance)
	}
	return score
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
