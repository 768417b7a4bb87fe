package sim

import (
	"context"
	"sync/atomic"
	"time"

	"novastrike/engine/internal/telemetry"
)

// Config tunes the fixed-timestep loop.
type Config struct {
	// TickRate is simulation steps per second.
	TickRate float64
	// CatchupMaxTicks caps how many steps run back-to-back after a stall
	// before the loop drops the backlog and resynchronizes.
	CatchupMaxTicks int
}

// DefaultConfig runs at the engine's native 22.4 Hz.
func DefaultConfig() Config {
	return Config{TickRate: 22.4, CatchupMaxTicks: 5}
}

// Loop drives a single-threaded simulation: one Advance call per tick, no
// overlap, no concurrency. Everything the engine mutates is owned by the
// goroutine running the loop.
type Loop struct {
	cfg     Config
	advance func(tick uint64)
	logger  telemetry.Logger
	tick    atomic.Uint64
}

// NewLoop wraps an advance callback in a fixed-timestep runner.
func NewLoop(cfg Config, logger telemetry.Logger, advance func(tick uint64)) *Loop {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.CatchupMaxTicks <= 0 {
		cfg.CatchupMaxTicks = DefaultConfig().CatchupMaxTicks
	}
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	return &Loop{cfg: cfg, advance: advance, logger: logger}
}

// Tick returns the number of completed steps. Safe to read from other
// goroutines, e.g. a status endpoint.
func (l *Loop) Tick() uint64 {
	if l == nil {
		return 0
	}
	return l.tick.Load()
}

// Step runs exactly one tick. Tests and headless drivers use it directly.
func (l *Loop) Step() {
	if l == nil || l.advance == nil {
		return
	}
	l.advance(l.tick.Add(1))
}

// Run steps the simulation until ctx is canceled, catching up after stalls
// within the configured budget.
func (l *Loop) Run(ctx context.Context) {
	if l == nil || l.advance == nil {
		return
	}
	interval := time.Duration(float64(time.Second) / l.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			steps := 0
			for !next.After(now) {
				l.Step()
				next = next.Add(interval)
				steps++
				if steps >= l.cfg.CatchupMaxTicks {
					if next.Before(now) {
						l.logger.Printf("tick backlog exceeded %d steps, resynchronizing", l.cfg.CatchupMaxTicks)
						next = now.Add(interval)
					}
					break
				}
			}
		}
	}
}
