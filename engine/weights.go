package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

var ErrUnknownProfile = errors.New("unknown profile")

// Protection models.
const (
	ProtectionExchange = "exchange"
	ProtectionTally    = "tally"
	ProtectionWeighted = "weighted"
)

// Pawn structure models.
const (
	PawnFlat      = "flat"
	PawnCentral   = "central"
	PawnKingAware = "king-aware"
)

// Spare defender curves.
const (
	SpareLinear = "linear"
	SpareSqrt   = "sqrt"
)

// Weights parameterizes the evaluator and move filter.
type Weights struct {
	Material   float64 `json:"material"`
	Protection float64 `json:"protection"`
	KingSafety float64 `json:"king_safety"`
	Pawns      float64 `json:"pawns"`

	ProtectionModel     string  `json:"protection_model"`
	PieceLeadsExchange  bool    `json:"piece_leads_exchange"`
	SpareCurve          string  `json:"spare_curve"`
	SpareDefenseWeight  float64 `json:"spare_defense_weight"`
	DefenderTempoWeight float64 `json:"defender_tempo_weight"`

	// King safety is only scored while this much material remains.
	KingSafetyMaterial float64 `json:"king_safety_material"`

	PawnModel       string  `json:"pawn_model"`
	PawnRankOrigin  int     `json:"pawn_rank_origin"`
	PawnCentralBase float64 `json:"pawn_central_base"`
	PawnWingWeight  float64 `json:"pawn_wing_weight"`

	BlunderThreshold       float64 `json:"blunder_threshold"`
	FilterOwnBlunders      bool    `json:"filter_own_blunders"`
	FilterOpponentBlunders bool    `json:"filter_opponent_blunders"`
	CandidateLimit         int     `json:"candidate_limit"`

	CheckmateScore float64 `json:"checkmate_score"`
}

// DepthSchedule maps remaining clock time to a search depth.
type DepthSchedule struct {
	AmpleTimeMs int64 `json:"ample_time_ms"`
	AmpleDepth  int   `json:"ample_depth"`
	BaseDepth   int   `json:"base_depth"`
	MsPerPly    int64 `json:"ms_per_ply"`
	// Nodes at or below this depth back up the filter scores directly.
	LeafDepth int `json:"leaf_depth"`
}

type Profile struct {
	Name     string        `json:"name"`
	Weights  Weights       `json:"weights"`
	Schedule DepthSchedule `json:"schedule"`
}

const DefaultProfile = "gen4"

var profiles = map[string]Profile{
	"gen1": {
		Name: "gen1",
		Weights: Weights{
			Material: 8, Protection: 1, KingSafety: 0, Pawns: 2,
			ProtectionModel: ProtectionWeighted,
			SpareCurve:      SpareLinear,
			PawnModel:       PawnFlat,
			CandidateLimit:  6,
			CheckmateScore:  50000,
		},
		Schedule: DepthSchedule{AmpleTimeMs: 30000, AmpleDepth: 3, BaseDepth: 0, MsPerPly: 10000, LeafDepth: 0},
	},
	"gen2": {
		Name: "gen2",
		Weights: Weights{
			Material: 10, Protection: 2, KingSafety: 0, Pawns: 1,
			ProtectionModel:   ProtectionTally,
			SpareCurve:        SpareLinear,
			PawnModel:         PawnFlat,
			BlunderThreshold:  5,
			FilterOwnBlunders: true,
			CheckmateScore:    50000,
		},
		Schedule: DepthSchedule{AmpleTimeMs: 30000, AmpleDepth: 2, BaseDepth: 0, MsPerPly: 10000, LeafDepth: 0},
	},
	"gen3": {
		Name: "gen3",
		Weights: Weights{
			Material: 16, Protection: 2, KingSafety: 0, Pawns: 2,
			ProtectionModel:    ProtectionExchange,
			SpareCurve:         SpareLinear,
			SpareDefenseWeight: 0.3,
			PawnModel:          PawnCentral,
			PawnCentralBase:    4.5,
			BlunderThreshold:   5,
			FilterOwnBlunders:  true,
			CheckmateScore:     50000,
		},
		Schedule: DepthSchedule{AmpleTimeMs: 30000, AmpleDepth: 2, BaseDepth: 0, MsPerPly: 10000, LeafDepth: 0},
	},
	"gen4": {
		Name: "gen4",
		Weights: Weights{
			Material: 5, Protection: 3, KingSafety: 2, Pawns: 1,
			ProtectionModel:        ProtectionExchange,
			PieceLeadsExchange:     true,
			SpareCurve:             SpareSqrt,
			SpareDefenseWeight:     0.05,
			DefenderTempoWeight:    0.025,
			KingSafetyMaterial:     28,
			PawnModel:              PawnKingAware,
			PawnRankOrigin:         1,
			PawnCentralBase:        2,
			PawnWingWeight:         2,
			BlunderThreshold:       5,
			FilterOwnBlunders:      true,
			FilterOpponentBlunders: true,
			CheckmateScore:         10000,
		},
		Schedule: DepthSchedule{AmpleTimeMs: 30000, AmpleDepth: 3, BaseDepth: 1, MsPerPly: 10000, LeafDepth: 1},
	},
}

// LookupProfile returns a copy of the named built-in profile.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadWeights decodes a JSON object on top of base. Fields absent from the
// input keep their base value.
func LoadWeights(r io.Reader, base Weights) (Weights, error) {
	w := base
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return base, fmt.Errorf("decode weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return base, err
	}
	return w, nil
}

func (w *Weights) Validate() error {
	for name, v := range map[string]float64{
		"material":    w.Material,
		"protection":  w.Protection,
		"king_safety": w.KingSafety,
		"pawns":       w.Pawns,
	} {
		if v < 0 {
			return fmt.Errorf("weights: %s coefficient is negative (%v)", name, v)
		}
	}
	if w.Material+w.Protection+w.KingSafety+w.Pawns <= 0 {
		return errors.New("weights: coefficients sum to zero")
	}
	switch w.ProtectionModel {
	case ProtectionExchange, ProtectionTally, ProtectionWeighted:
	default:
		return fmt.Errorf("weights: unknown protection model %q", w.ProtectionModel)
	}
	switch w.PawnModel {
	case PawnFlat, PawnCentral, PawnKingAware:
	default:
		return fmt.Errorf("weights: unknown pawn model %q", w.PawnModel)
	}
	switch w.SpareCurve {
	case SpareLinear, SpareSqrt:
	default:
		return fmt.Errorf("weights: unknown spare curve %q", w.SpareCurve)
	}
	if w.BlunderThreshold < 0 {
		return fmt.Errorf("weights: negative blunder threshold %v", w.BlunderThreshold)
	}
	if w.CandidateLimit < 0 {
		return fmt.Errorf("weights: negative candidate limit %d", w.CandidateLimit)
	}
	if w.CheckmateScore <= 0 {
		return fmt.Errorf("weights: checkmate score must be positive (%v)", w.CheckmateScore)
	}
	return nil
}

func (w *Weights) coefficientSum() float64 {
	return w.Material + w.Protection + w.KingSafety + w.Pawns
}
