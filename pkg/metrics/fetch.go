package metrics

// FetchStats captures how a chart's raw input collections were obtained.
type FetchStats struct {
	LatencyMs    int64 `json:"latencyMs"`
	PayloadBytes int   `json:"payloadBytes,omitempty"`
	CacheHit     bool  `json:"cacheHit"`
}

// IsZero reports whether fetch metadata is absent.
func (s FetchStats) IsZero() bool {
	return s.LatencyMs == 0 && s.PayloadBytes == 0 && !s.CacheHit
}
