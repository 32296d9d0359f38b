package engine

import "time"

// DepthFor picks the search depth for the remaining clock time. Ample time
// gets the full depth; below that the depth grows with each MsPerPly left.
func (ds DepthSchedule) DepthFor(remaining time.Duration) int {
	ms := remaining.Milliseconds()
	if ms > ds.AmpleTimeMs {
		return ds.AmpleDepth
	}
	depth := ds.BaseDepth
	if ds.MsPerPly > 0 {
		depth += int(ms / ds.MsPerPly)
	}
	if depth > ds.AmpleDepth {
		depth = ds.AmpleDepth
	}
	if depth < 0 {
		depth = 0
	}
	return depth
}
