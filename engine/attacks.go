package engine

import "github.com/dylhunn/dragontoothmg"

// Square indexing follows dragontoothmg: a1 = 0, h1 = 7, a8 = 56.
const (
	bitboardFileA uint64 = 0x0101010101010101
	bitboardFileB uint64 = bitboardFileA << 1
	bitboardFileG uint64 = bitboardFileA << 6
	bitboardFileH uint64 = bitboardFileA << 7
)

var PositionBB [64]uint64
var KingMoves [64]uint64
var KnightMoves [64]uint64

// PawnAttacks holds capture targets only, indexed by color then square.
var PawnAttacks [2][64]uint64

func init() {
	initAttackTables()
}

func initAttackTables() {
	for sq := 0; sq < 64; sq++ {
		sqBB := uint64(1) << uint(sq)
		PositionBB[sq] = sqBB

		north := sqBB << 8
		south := sqBB >> 8
		east := (sqBB << 1) &^ bitboardFileA
		west := (sqBB >> 1) &^ bitboardFileH
		northEast := (sqBB << 9) &^ bitboardFileA
		northWest := (sqBB << 7) &^ bitboardFileH
		southEast := (sqBB >> 7) &^ bitboardFileA
		southWest := (sqBB >> 9) &^ bitboardFileH

		KingMoves[sq] = north | south | east | west | northEast | northWest | southEast | southWest

		KnightMoves[sq] = ((sqBB << 17) &^ bitboardFileA) |
			((sqBB << 15) &^ bitboardFileH) |
			((sqBB << 10) &^ (bitboardFileA | bitboardFileB)) |
			((sqBB << 6) &^ (bitboardFileG | bitboardFileH)) |
			((sqBB >> 6) &^ (bitboardFileA | bitboardFileB)) |
			((sqBB >> 10) &^ (bitboardFileG | bitboardFileH)) |
			((sqBB >> 15) &^ bitboardFileA) |
			((sqBB >> 17) &^ bitboardFileH)

		PawnAttacks[White][sq] = northEast | northWest
		PawnAttacks[Black][sq] = southEast | southWest
	}
}

// pseudoAttacks returns the squares a piece on sq could move to or capture on,
// ignoring pins and checks. Sliders stop at (and include) the first blocker of
// either color.
func pseudoAttacks(piece dragontoothmg.Piece, color Color, sq uint8, occupancy uint64) uint64 {
	switch piece {
	case dragontoothmg.Pawn:
		return PawnAttacks[color][sq]
	case dragontoothmg.Knight:
		return KnightMoves[sq]
	case dragontoothmg.King:
		return KingMoves[sq]
	case dragontoothmg.Bishop:
		return dragontoothmg.CalculateBishopMoveBitboard(sq, occupancy)
	case dragontoothmg.Rook:
		return dragontoothmg.CalculateRookMoveBitboard(sq, occupancy)
	case dragontoothmg.Queen:
		return dragontoothmg.CalculateBishopMoveBitboard(sq, occupancy) |
			dragontoothmg.CalculateRookMoveBitboard(sq, occupancy)
	}
	return 0
}
