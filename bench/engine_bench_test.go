package bench

import (
	"testing"

	"skirmish/engine"
)

const (
	kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos6     = "r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10"
)

func profile(b *testing.B, name string) engine.Profile {
	p, err := engine.LookupProfile(name)
	if err != nil {
		b.Fatalf("LookupProfile: %v", err)
	}
	return p
}

func benchThreatMap(b *testing.B, fen string) {
	board, err := engine.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.BuildThreatMap(&board)
	}
}

func BenchmarkThreatMap_Initial(b *testing.B)  { benchThreatMap(b, engine.StartFEN) }
func BenchmarkThreatMap_Kiwipete(b *testing.B) { benchThreatMap(b, kiwipete) }

func benchEvaluate(b *testing.B, name, fen string) {
	board, err := engine.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	e := engine.NewEvaluator(profile(b, name).Weights, engine.White)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(&board)
	}
}

func BenchmarkEvaluate_Gen1_Kiwipete(b *testing.B) { benchEvaluate(b, "gen1", kiwipete) }
func BenchmarkEvaluate_Gen2_Kiwipete(b *testing.B) { benchEvaluate(b, "gen2", kiwipete) }
func BenchmarkEvaluate_Gen4_Kiwipete(b *testing.B) { benchEvaluate(b, "gen4", kiwipete) }
func BenchmarkEvaluate_Gen4_Pos6(b *testing.B)     { benchEvaluate(b, "gen4", pos6) }

func BenchmarkFilter_Gen4_Kiwipete(b *testing.B) {
	board, err := engine.ParseFEN(kiwipete)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	e := engine.NewEvaluator(profile(b, "gen4").Weights, engine.White)
	base := e.Evaluate(&board)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Filter(&board, base, true)
	}
}

func benchSearch(b *testing.B, name, fen string, depth int) {
	p := profile(b, name)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		board, err := engine.ParseFEN(fen)
		if err != nil {
			b.Fatalf("ParseFEN: %v", err)
		}
		agent, err := engine.NewAgent(p, engine.WithMemoSize(1<<16))
		if err != nil {
			b.Fatalf("NewAgent: %v", err)
		}
		b.StartTimer()
		if _, err := agent.SearchDepth(&board, depth); err != nil {
			b.Fatalf("SearchDepth: %v", err)
		}
	}
}

func BenchmarkSearch_Gen4_Initial_D2(b *testing.B) { benchSearch(b, "gen4", engine.StartFEN, 2) }
func BenchmarkSearch_Gen4_Pos6_D2(b *testing.B)    { benchSearch(b, "gen4", pos6, 2) }
func BenchmarkSearch_Gen2_Initial_D2(b *testing.B) { benchSearch(b, "gen2", engine.StartFEN, 2) }

func BenchmarkPerft_Initial_D3(b *testing.B) {
	board, err := engine.ParseFEN(engine.StartFEN)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Perft(&board, 3)
	}
}
