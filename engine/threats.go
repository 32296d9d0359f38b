package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

type Attacker struct {
	Piece dragontoothmg.Piece
	Color Color
	From  uint8
}

// ThreatMap lists, for every square, the pieces of either color that could
// move onto it this ply. Check legality is ignored.
type ThreatMap [64][]Attacker

var threatOrder = [...]dragontoothmg.Piece{
	dragontoothmg.Pawn,
	dragontoothmg.Knight,
	dragontoothmg.Bishop,
	dragontoothmg.Rook,
	dragontoothmg.Queen,
	dragontoothmg.King,
}

func piecesOfType(bb *dragontoothmg.Bitboards, pt dragontoothmg.Piece) uint64 {
	switch pt {
	case dragontoothmg.Pawn:
		return bb.Pawns
	case dragontoothmg.Knight:
		return bb.Knights
	case dragontoothmg.Bishop:
		return bb.Bishops
	case dragontoothmg.Rook:
		return bb.Rooks
	case dragontoothmg.Queen:
		return bb.Queens
	case dragontoothmg.King:
		return bb.Kings
	}
	return 0
}

func BuildThreatMap(b *dragontoothmg.Board) *ThreatMap {
	var tm ThreatMap
	occupancy := b.White.All | b.Black.All
	for _, color := range [2]Color{White, Black} {
		own := bitboardsOf(b, color)
		for _, pt := range threatOrder {
			for pieces := piecesOfType(own, pt); pieces != 0; pieces &= pieces - 1 {
				from := uint8(bits.TrailingZeros64(pieces))
				targets := pseudoAttacks(pt, color, from, occupancy)
				for ; targets != 0; targets &= targets - 1 {
					to := bits.TrailingZeros64(targets)
					tm[to] = append(tm[to], Attacker{Piece: pt, Color: color, From: from})
				}
			}
		}
	}
	return &tm
}

// Protectors returns the piece types of color c that reach sq.
func (tm *ThreatMap) Protectors(sq uint8, c Color) []dragontoothmg.Piece {
	return tm.piecesOf(sq, c)
}

// Attackers returns the piece types of the opponent of c that reach sq.
func (tm *ThreatMap) Attackers(sq uint8, c Color) []dragontoothmg.Piece {
	return tm.piecesOf(sq, c.Other())
}

func (tm *ThreatMap) piecesOf(sq uint8, c Color) []dragontoothmg.Piece {
	var out []dragontoothmg.Piece
	for _, a := range tm[sq] {
		if a.Color == c {
			out = append(out, a.Piece)
		}
	}
	return out
}
