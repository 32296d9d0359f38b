package engine

import (
	"errors"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

const (
	kiwipete  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	foolsMate = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
)

func mustBoard(t testing.TB, fen string) dragontoothmg.Board {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return b
}

func TestParseFEN(t *testing.T) {
	b := mustBoard(t, "4k3/8/8/8/8/8/8/4K3 b - -")
	if b.Wtomove {
		t.Fatalf("expected black to move")
	}
	for _, bad := range []string{
		"",
		"not a fen",
		"8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/2K1K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4R1K1 w - - 0 1",
	} {
		if _, err := ParseFEN(bad); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("ParseFEN(%q) err = %v, want ErrInvalidFEN", bad, err)
		}
	}
}

func TestPositionKeyIgnoresClocks(t *testing.T) {
	a := mustBoard(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	b := mustBoard(t, "4k3/8/8/8/8/8/8/4K3 w - - 17 40")
	if PositionKey(&a) != PositionKey(&b) {
		t.Fatalf("keys differ: %q vs %q", PositionKey(&a), PositionKey(&b))
	}
	c := mustBoard(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	if PositionKey(&a) == PositionKey(&c) {
		t.Fatalf("side to move not part of the key")
	}
}

func TestIsCheckmate(t *testing.T) {
	mated := mustBoard(t, foolsMate)
	if !IsCheckmate(&mated) {
		t.Fatalf("fool's mate not detected")
	}
	stalemate := mustBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if IsCheckmate(&stalemate) {
		t.Fatalf("stalemate reported as checkmate")
	}
	start := mustBoard(t, StartFEN)
	if IsCheckmate(&start) {
		t.Fatalf("start position reported as checkmate")
	}
}

func TestPlayReleaseRestoresBoard(t *testing.T) {
	b := mustBoard(t, kiwipete)
	before := b.ToFen()
	for _, m := range b.GenerateLegalMoves() {
		release := play(&b, m)
		if b.ToFen() == before {
			t.Fatalf("move %v did not change the board", &m)
		}
		release()
		release()
		if b.ToFen() != before {
			t.Fatalf("after %v: got %s, want %s", &m, b.ToFen(), before)
		}
	}
}

func TestPlayReleaseOnEarlyReturn(t *testing.T) {
	b := mustBoard(t, StartFEN)
	before := b.ToFen()
	afterFirst := func() string {
		for _, m := range b.GenerateLegalMoves() {
			release := play(&b, m)
			defer release()
			return b.ToFen()
		}
		return ""
	}()
	if afterFirst == before {
		t.Fatalf("first move did not change the board")
	}
	if b.ToFen() != before {
		t.Fatalf("board not restored: %s", b.ToFen())
	}
}

func TestFindMove(t *testing.T) {
	b := mustBoard(t, StartFEN)
	m, ok := FindMove(&b, "g1f3")
	if !ok || m.String() != "g1f3" {
		t.Fatalf("g1f3 not found")
	}
	if _, ok := FindMove(&b, "e2e5"); ok {
		t.Fatalf("illegal e2e5 accepted")
	}
}
