package engine

import (
	"github.com/dylhunn/dragontoothmg"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMemoSize = 1 << 18

type memoEntry struct {
	Move  dragontoothmg.Move
	Score float64
	Depth int
}

// Memo caches search results by PositionKey. A cached result answers any
// request at its own depth or shallower. Least recently used keys are evicted
// once the capacity is reached.
type Memo struct {
	entries *lru.Cache[string, memoEntry]
}

func NewMemo(capacity int) (*Memo, error) {
	if capacity <= 0 {
		capacity = DefaultMemoSize
	}
	cache, err := lru.New[string, memoEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &Memo{entries: cache}, nil
}

func (m *Memo) Probe(key string, depth int) (ScoredMove, bool) {
	entry, ok := m.entries.Get(key)
	if !ok || entry.Depth < depth {
		return ScoredMove{}, false
	}
	return ScoredMove{Move: entry.Move, Score: entry.Score}, true
}

func (m *Memo) Store(key string, best ScoredMove, depth int) {
	m.entries.Add(key, memoEntry{Move: best.Move, Score: best.Score, Depth: depth})
}

func (m *Memo) Len() int {
	return m.entries.Len()
}

func (m *Memo) Clear() {
	m.entries.Purge()
}
