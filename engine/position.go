package engine

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NullMove is returned when a search node has no candidate moves.
const NullMove dragontoothmg.Move = 0

var ErrInvalidFEN = errors.New("invalid FEN")

// Material values indexed by dragontoothmg.Piece. The king has no material value.
var pieceValues = [7]float64{0, 1, 3, 3, 5, 9, 0}

func PieceValue(p dragontoothmg.Piece) float64 {
	return pieceValues[p]
}

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

func sideToMove(b *dragontoothmg.Board) Color {
	if b.Wtomove {
		return White
	}
	return Black
}

func bitboardsOf(b *dragontoothmg.Board, c Color) *dragontoothmg.Bitboards {
	if c == White {
		return &b.White
	}
	return &b.Black
}

// PositionKey identifies a position by placement, side to move, castling
// rights and en-passant square. Move clocks are ignored.
func PositionKey(b *dragontoothmg.Board) string {
	fields := strings.Fields(b.ToFen())
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// IsCheckmate reports whether the side to move is in check with no legal reply.
func IsCheckmate(b *dragontoothmg.Board) bool {
	return b.OurKingInCheck() && len(b.GenerateLegalMoves()) == 0
}

// play applies m and returns a release func that restores the board. Calling
// release more than once is a no-op.
func play(b *dragontoothmg.Board, m dragontoothmg.Move) (release func()) {
	unapply := b.Apply(m)
	done := false
	return func() {
		if done {
			return
		}
		done = true
		unapply()
	}
}

// ParseFEN wraps dragontoothmg.ParseFen, which panics on malformed input.
func ParseFEN(fen string) (board dragontoothmg.Board, err error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return board, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	if strings.Count(fields[0], "/") != 7 {
		return board, fmt.Errorf("%w: bad placement %q", ErrInvalidFEN, fields[0])
	}
	if fields[1] != "w" && fields[1] != "b" {
		return board, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	} else if len(fields) == 5 {
		fields = append(fields, "1")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	board = dragontoothmg.ParseFen(strings.Join(fields, " "))
	if err := checkKings(&board); err != nil {
		return dragontoothmg.Board{}, err
	}
	return board, nil
}

// checkKings rejects positions move generation cannot handle: each side needs
// exactly one king, and the side that just moved must not be left in check.
func checkKings(b *dragontoothmg.Board) error {
	for _, c := range [2]Color{White, Black} {
		if n := bits.OnesCount64(bitboardsOf(b, c).Kings); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}
	mover := sideToMove(b)
	king := uint8(bits.TrailingZeros64(bitboardsOf(b, mover.Other()).Kings))
	if attackedBy(b, king, mover) {
		return fmt.Errorf("%w: %s to move can capture the king", ErrInvalidFEN, mover)
	}
	return nil
}

// attackedBy reports whether any piece of color c reaches sq.
func attackedBy(b *dragontoothmg.Board, sq uint8, c Color) bool {
	occupancy := b.White.All | b.Black.All
	own := bitboardsOf(b, c)
	for _, pt := range threatOrder {
		for pieces := piecesOfType(own, pt); pieces != 0; pieces &= pieces - 1 {
			from := uint8(bits.TrailingZeros64(pieces))
			if pseudoAttacks(pt, c, from, occupancy)&PositionBB[sq] != 0 {
				return true
			}
		}
	}
	return false
}

// FindMove returns the legal move whose UCI string is s.
func FindMove(b *dragontoothmg.Board, s string) (dragontoothmg.Move, bool) {
	for _, m := range b.GenerateLegalMoves() {
		if m.String() == s {
			return m, true
		}
	}
	return NullMove, false
}
