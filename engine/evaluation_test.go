package engine

import (
	"testing"
)

func evaluatorFor(t *testing.T, profile string, perspective Color) *Evaluator {
	t.Helper()
	return NewEvaluator(weightsOf(t, profile), perspective)
}

func TestEvaluateInitialPositionIsBalanced(t *testing.T) {
	for _, name := range ProfileNames() {
		b := mustBoard(t, StartFEN)
		for _, side := range []Color{White, Black} {
			br := evaluatorFor(t, name, side).Explain(&b)
			if br.Material != 0 || br.TotalMaterial != 78 {
				t.Fatalf("%s/%v: material %v total %v", name, side, br.Material, br.TotalMaterial)
			}
			if !almostEqual(br.Protection, 0) || br.KingSafety != 0 {
				t.Fatalf("%s/%v: protection %v king safety %v", name, side, br.Protection, br.KingSafety)
			}
			// Only gen4 measures pawn advance from the starting rank.
			if name == "gen4" && !almostEqual(br.Total, 0) {
				t.Fatalf("%s/%v: start position scored %v", name, side, br.Total)
			}
		}
	}
}

func TestEvaluateCheckmate(t *testing.T) {
	b := mustBoard(t, foolsMate)
	if got := evaluatorFor(t, "gen4", White).Evaluate(&b); got != -10000 {
		t.Fatalf("mated side: got %v, want -10000", got)
	}
	if got := evaluatorFor(t, "gen4", Black).Evaluate(&b); got != 10000 {
		t.Fatalf("mating side: got %v, want 10000", got)
	}
	if got := evaluatorFor(t, "gen2", Black).Evaluate(&b); got != 50000 {
		t.Fatalf("gen2 mating side: got %v, want 50000", got)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	for _, fen := range []string{StartFEN, kiwipete, foolsMate} {
		b := mustBoard(t, fen)
		before := b.ToFen()
		e := evaluatorFor(t, "gen4", White)
		first := e.Evaluate(&b)
		second := e.Evaluate(&b)
		if first != second || b.ToFen() != before {
			t.Fatalf("%s: %v then %v, board %s", fen, first, second, b.ToFen())
		}
	}
}

func TestEvaluateHangingQueen(t *testing.T) {
	hanging := mustBoard(t, "4k3/8/8/2p5/3Q4/8/8/4K3 b - - 0 1")
	safe := mustBoard(t, "4k3/8/8/2p5/8/3Q4/8/4K3 b - - 0 1")
	e := evaluatorFor(t, "gen4", White)

	br := e.Explain(&hanging)
	if br.Protection > -8 {
		t.Fatalf("hanging queen protection = %v, want <= -8", br.Protection)
	}
	if !almostEqual(br.Protection, -9+0.025) {
		t.Fatalf("protection = %v, want %v", br.Protection, -9+0.025)
	}
	if br.KingSafety != 0 {
		t.Fatalf("king safety scored with %v material", br.TotalMaterial)
	}
	if got, ref := e.Evaluate(&hanging), e.Evaluate(&safe); got >= ref {
		t.Fatalf("hanging %v should score below safe %v", got, ref)
	}
	if !almostEqual(e.Evaluate(&safe), 40.0/11) {
		t.Fatalf("safe = %v, want %v", e.Evaluate(&safe), 40.0/11)
	}
}

func TestProtectionModels(t *testing.T) {
	b := mustBoard(t, "4k3/8/8/2p5/3Q4/8/8/4K3 b - - 0 1")
	cases := []struct {
		profile string
		want    float64
	}{
		// queen: one net attacker, -9; pawn: one net attacker, +1 for white
		{"gen2", -8},
		// queen: -(9-1) for the pawn attack; pawn attacked by a heavier piece costs nothing
		{"gen1", -8},
	}
	for _, tc := range cases {
		got := evaluatorFor(t, tc.profile, White).Explain(&b).Protection
		if !almostEqual(got, tc.want) {
			t.Fatalf("%s: protection %v, want %v", tc.profile, got, tc.want)
		}
	}
}

func TestWeightedProtectionCountsDefenders(t *testing.T) {
	// Knight d4 defended by pawns c3 and e3, nothing else touches anything.
	b := mustBoard(t, "7k/8/8/8/3N4/2P1P3/8/K7 w - - 0 1")
	got := evaluatorFor(t, "gen1", White).Explain(&b).Protection
	// two pawn protectors at 3 each; king a1 defends nothing
	if !almostEqual(got, 6) {
		t.Fatalf("protection = %v, want 6", got)
	}
}

func TestKingSafety(t *testing.T) {
	castled := mustBoard(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1RK1 w kq - 0 1")
	if got := evaluatorFor(t, "gen4", White).Explain(&castled).KingSafety; got != 4 {
		t.Fatalf("castled white king: %v, want 4", got)
	}
	if got := evaluatorFor(t, "gen4", Black).Explain(&castled).KingSafety; got != -4 {
		t.Fatalf("from black: %v, want -4", got)
	}

	walked := mustBoard(t, "rnbq1bnr/ppppkppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")
	if got := evaluatorFor(t, "gen4", White).Explain(&walked).KingSafety; got != 1 {
		t.Fatalf("black king on e7: %v, want 1", got)
	}

	endgame := mustBoard(t, "4k3/8/8/8/8/8/8/6K1 w - - 0 1")
	if got := evaluatorFor(t, "gen4", White).Explain(&endgame).KingSafety; got != 0 {
		t.Fatalf("king safety in endgame: %v", got)
	}
}

func TestPawnModels(t *testing.T) {
	cases := []struct {
		name, profile, fen string
		side               Color
		want               float64
	}{
		{"king-aware wing", "gen4", "4k3/8/8/8/P7/7P/5P2/6K1 w - - 0 1", White, 4 - 2},
		{"king-aware central king", "gen4", "4k3/8/8/4p3/8/8/8/4K3 w - - 0 1", Black, 1.5 * 2},
		{"central", "gen3", "4k3/8/8/8/4P3/8/P7/4K3 w - - 0 1", White, 4*3 + 1*1},
		{"flat", "gen2", "4k3/8/8/8/4P3/8/P7/4K3 w - - 0 1", White, 3 + 1},
		{"opponent pawns ignored", "gen2", "4k3/p7/8/8/8/8/8/4K3 w - - 0 1", White, 0},
	}
	for _, tc := range cases {
		b := mustBoard(t, tc.fen)
		got := evaluatorFor(t, tc.profile, tc.side).Explain(&b).Pawns
		if !almostEqual(got, tc.want) {
			t.Fatalf("%s: pawns %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTotalIsWeightedMean(t *testing.T) {
	b := mustBoard(t, kiwipete)
	e := evaluatorFor(t, "gen4", White)
	br := e.Explain(&b)
	w := e.Weights
	want := (w.Material*br.Material + w.Protection*br.Protection + w.KingSafety*br.KingSafety + w.Pawns*br.Pawns) / 11
	if !almostEqual(br.Total, want) {
		t.Fatalf("total %v, want %v", br.Total, want)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	board := mustBoard(b, kiwipete)
	p, _ := LookupProfile("gen4")
	e := NewEvaluator(p.Weights, White)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(&board)
	}
}
