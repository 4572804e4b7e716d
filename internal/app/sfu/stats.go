package sfu

import "sync/atomic"

type counters struct {
	received   atomic.Uint64
	forwarded  atomic.Uint64
	malformed  atomic.Uint64
	oversize   atomic.Uint64
	sendErrors atomic.Uint64
}

// Stats is a point-in-time copy of a relay's counters.
type Stats struct {
	Received         uint64 `json:"received"`
	Forwarded        uint64 `json:"forwarded"`
	DroppedMalformed uint64 `json:"dropped_malformed"`
	DroppedOversize  uint64 `json:"dropped_oversize"`
	SendErrors       uint64 `json:"send_errors"`
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:         c.received.Load(),
		Forwarded:        c.forwarded.Load(),
		DroppedMalformed: c.malformed.Load(),
		DroppedOversize:  c.oversize.Load(),
		SendErrors:       c.sendErrors.Load(),
	}
}
