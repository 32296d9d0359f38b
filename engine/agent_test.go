package engine

import (
	"errors"
	"testing"
	"time"
)

func newTestAgent(t *testing.T, p Profile) *Agent {
	t.Helper()
	a, err := NewAgent(p, WithMemoSize(1<<12))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func TestThinkReturnsLegalMove(t *testing.T) {
	p, _ := LookupProfile("gen4")
	a := newTestAgent(t, p)
	b := mustBoard(t, kiwipete)
	before := b.ToFen()

	m, err := a.Think(&b, 0)
	if err != nil {
		t.Fatalf("think: %v", err)
	}
	if _, ok := FindMove(&b, m.String()); !ok {
		t.Fatalf("%v is not legal", &m)
	}
	if b.ToFen() != before {
		t.Fatalf("board changed: %s", b.ToFen())
	}
	if d := a.LastDecision(); d.Depth != 1 || d.Move != m || d.Stats.Nodes == 0 {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestThinkWithoutLegalMoves(t *testing.T) {
	p, _ := LookupProfile("gen4")
	a := newTestAgent(t, p)
	b := mustBoard(t, foolsMate)
	if _, err := a.Think(&b, time.Minute); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("err = %v, want ErrNoLegalMoves", err)
	}
	stalemate := mustBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if _, err := a.SearchDepth(&stalemate, 2); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("stalemate err = %v, want ErrNoLegalMoves", err)
	}
}

func TestThinkFallsBackWhenEveryMoveIsFiltered(t *testing.T) {
	// The white king's only legal move, Kf1, gives up its wing bonus.
	p := Profile{
		Name: "king-only",
		Weights: Weights{
			KingSafety:        1,
			ProtectionModel:   ProtectionExchange,
			PawnModel:         PawnFlat,
			SpareCurve:        SpareLinear,
			BlunderThreshold:  1,
			FilterOwnBlunders: true,
			CheckmateScore:    10000,
		},
		Schedule: DepthSchedule{AmpleTimeMs: 0, AmpleDepth: 1, BaseDepth: 1, LeafDepth: 1},
	}
	a := newTestAgent(t, p)
	b := mustBoard(t, "4k2r/8/8/8/8/8/r7/6K1 w - - 0 1")
	if n := len(b.GenerateLegalMoves()); n != 1 {
		t.Fatalf("expected one legal move, got %d", n)
	}

	m, err := a.Think(&b, time.Second)
	if err != nil {
		t.Fatalf("think: %v", err)
	}
	if m.String() != "g1f1" {
		t.Fatalf("got %v, want g1f1", &m)
	}
	if d := a.LastDecision(); !d.Fallback || d.Score != 0 {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestNewGameClearsMemo(t *testing.T) {
	p, _ := LookupProfile("gen2")
	a := newTestAgent(t, p)
	b := mustBoard(t, StartFEN)
	if _, err := a.SearchDepth(&b, 1); err != nil {
		t.Fatalf("search: %v", err)
	}
	if a.MemoLen() == 0 {
		t.Fatalf("memo empty after search")
	}
	a.NewGame()
	if a.MemoLen() != 0 {
		t.Fatalf("memo not cleared: %d", a.MemoLen())
	}
}

func TestPerspectiveFollowsFirstThink(t *testing.T) {
	p, _ := LookupProfile("gen4")
	a := newTestAgent(t, p)
	b := mustBoard(t, "4k3/8/8/2p5/8/3Q4/8/4K3 b - - 0 1")

	// Not yet seated: explain from the side to move.
	if got := a.Explain(&b).Material; got != -8 {
		t.Fatalf("unseated material = %v, want -8", got)
	}
	if _, err := a.Think(&b, time.Second); err != nil {
		t.Fatalf("think: %v", err)
	}
	white := mustBoard(t, "4k3/8/8/2p5/8/3Q4/8/4K3 w - - 0 1")
	if got := a.Explain(&white).Material; got != -8 {
		t.Fatalf("seated as black, material = %v, want -8", got)
	}
}

func TestNewAgentRejectsInvalidWeights(t *testing.T) {
	p, _ := LookupProfile("gen4")
	p.Weights.ProtectionModel = "nope"
	if _, err := NewAgent(p); err == nil {
		t.Fatalf("invalid weights accepted")
	}
}
