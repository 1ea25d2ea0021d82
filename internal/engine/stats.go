package engine

import "sync/atomic"

// tileCounters are written by the scheduler from any worker; readers take a
// snapshot without coordination.
type tileCounters struct {
	events     atomic.Int64
	faults     atomic.Int64
	busy       atomic.Int64
	deferred   atomic.Int64
	haloPushes atomic.Int64
}

func (c *tileCounters) snapshot() TileStats {
	return TileStats{
		Events:     c.events.Load(),
		Faults:     c.faults.Load(),
		Busy:       c.busy.Load(),
		Deferred:   c.deferred.Load(),
		HaloPushes: c.haloPushes.Load(),
	}
}

// TileStats counts what happened on a tile.
type TileStats struct {
	// Events is the number of dispatched events, faulted ones included.
	Events int64
	// Faults counts events whose Execute returned an error.
	Faults int64
	// Busy counts acquisition attempts rejected with ErrRegionBusy.
	Busy int64
	// Deferred counts turns given up after exhausting retries.
	Deferred int64
	// HaloPushes counts atoms copied into neighbor halos.
	HaloPushes int64
}

// Add returns the element-wise sum.
func (s TileStats) Add(o TileStats) TileStats {
	return TileStats{
		Events:     s.Events + o.Events,
		Faults:     s.Faults + o.Faults,
		Busy:       s.Busy + o.Busy,
		Deferred:   s.Deferred + o.Deferred,
		HaloPushes: s.HaloPushes + o.HaloPushes,
	}
}
