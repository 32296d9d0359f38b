package match

import (
	"context"
	"fmt"
)

// Tally sums points per player name across a series.
type Tally map[string]float64

// PlaySeries plays games games between a and b, swapping colors after each
// game. It stops at the first error and returns the games finished so far.
func PlaySeries(ctx context.Context, cfg Config, a, b Player, games int) ([]Result, Tally, error) {
	results := make([]Result, 0, games)
	tally := Tally{a.Name(): 0, b.Name(): 0}
	for i := 0; i < games; i++ {
		white, black := a, b
		if i%2 == 1 {
			white, black = b, a
		}
		gameCfg := cfg
		if cfg.Event != "" {
			gameCfg.Event = fmt.Sprintf("%s, game %d", cfg.Event, i+1)
		}
		res, err := Play(ctx, gameCfg, white, black)
		if err != nil {
			return results, tally, fmt.Errorf("game %d: %w", i+1, err)
		}
		results = append(results, res)
		tally[white.Name()] += res.Score()
		tally[black.Name()] += 1 - res.Score()
	}
	return results, tally, nil
}
