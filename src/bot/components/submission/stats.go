package submission

import "sync/atomic"

// Stats counts pipeline outcomes since startup, for the ops surface.
type Stats struct {
	Seen        atomic.Uint64
	Ignored     atomic.Uint64
	Throttled   atomic.Uint64
	Duplicates  atomic.Uint64
	Malformed   atomic.Uint64
	Provisioned atomic.Uint64
	Failures    atomic.Uint64
}

// StatsSnapshot is a point-in-time copy, safe to serialize.
type StatsSnapshot struct {
	Seen        uint64 `json:"seen"`
	Ignored     uint64 `json:"ignored"`
	Throttled   uint64 `json:"throttled"`
	Duplicates  uint64 `json:"duplicates"`
	Malformed   uint64 `json:"malformed"`
	Provisioned uint64 `json:"provisioned"`
	Failures    uint64 `json:"failures"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Seen:        s.Seen.Load(),
		Ignored:     s.Ignored.Load(),
		Throttled:   s.Throttled.Load(),
		Duplicates:  s.Duplicates.Load(),
		Malformed:   s.Malformed.Load(),
		Provisioned: s.Provisioned.Load(),
		Failures:    s.Failures.Load(),
	}
}
