package engine

import "github.com/dylhunn/dragontoothmg"

// Perft counts leaf nodes of the legal move tree to depth. It walks the tree
// with the same apply/release pairing as the search.
func Perft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		release := play(b, m)
		nodes += Perft(b, depth-1)
		release()
	}
	return nodes
}

// PerftDivide reports the perft count below each root move.
func PerftDivide(b *dragontoothmg.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range b.GenerateLegalMoves() {
		release := play(b, m)
		out[m.String()] = Perft(b, depth-1)
		release()
	}
	return out
}
