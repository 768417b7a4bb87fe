package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Sink receives routed events. Writes happen on a per-sink goroutine, so a
// slow sink stalls only itself.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with the name used for lookups and drop reporting.
type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to sinks through a bounded queue. Publish never
// blocks the tick: when the queue is full the event is dropped and counted.
type Router struct {
	cfg         Config
	queue       chan Event
	workers     []*sinkWorker
	clock       Clock
	fallback    *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closed      atomic.Bool
	minSeverity Severity
	fields      map[string]any
	wg          sync.WaitGroup
	startOnce   sync.Once

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

// RouterStats exposes delivery counters for telemetry.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// NewRouter builds and starts a router over the given sinks.
func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:         cfg,
		queue:       make(chan Event, bufferSize),
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		ctx:         ctx,
		cancel:      cancel,
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
	}

	workerBuffer := bufferSize
	if workerBuffer > 1024 {
		workerBuffer = 1024
	}
	if workerBuffer < 32 {
		workerBuffer = 32
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.workers = append(r.workers, newSinkWorker(named.Name, named.Sink, workerBuffer, r.fallback))
	}

	r.start()
	return r, nil
}

func (r *Router) start() {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go func() {
			defer func() {
				for _, worker := range r.workers {
					close(worker.events)
				}
				r.wg.Done()
			}()
			for {
				select {
				case <-r.ctx.Done():
					r.drain()
					return
				case event := <-r.queue:
					r.forward(event)
				}
			}
		}()

		for _, worker := range r.workers {
			r.wg.Add(1)
			go func(w *sinkWorker) {
				defer r.wg.Done()
				w.run()
			}(worker)
		}
	})
}

func (r *Router) drain() {
	for {
		select {
		case event := <-r.queue:
			r.forward(event)
		default:
			return
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	r.eventsTotal.Add(1)
	for _, worker := range r.workers {
		worker.enqueue(event)
	}
}

// Publish implements Publisher.
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.handleDrop(event)
	}
}

func (r *Router) handleDrop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.lastDropLog.Load()
	if next == 0 || now >= next {
		if r.lastDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
			r.fallback.Printf("dropping event type=%s tick=%d", event.Type, event.Tick)
		}
	}
}

// Close flushes queued events and shuts the sinks down.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, worker := range r.workers {
		if err := worker.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns delivery counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Sink returns the sink registered under name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, worker := range r.workers {
		if worker.name == name {
			return worker.sink
		}
	}
	return nil
}

type sinkWorker struct {
	name     string
	sink     Sink
	events   chan Event
	fallback *log.Logger
	failures int
}

func newSinkWorker(name string, sink Sink, buffer int, fallback *log.Logger) *sinkWorker {
	if buffer <= 0 {
		buffer = 32
	}
	return &sinkWorker{
		name:     name,
		sink:     sink,
		events:   make(chan Event, buffer),
		fallback: fallback,
	}
}

func (w *sinkWorker) enqueue(event Event) {
	cloned := cloneEvent(event)
	select {
	case w.events <- cloned:
	default:
		w.fallback.Printf("sink %s dropping event type=%s tick=%d", w.name, event.Type, event.Tick)
	}
}

func (w *sinkWorker) run() {
	for event := range w.events {
		if err := w.sink.Write(event); err != nil {
			w.failures++
			if w.failures == 1 || w.failures%100 == 0 {
				w.fallback.Printf("sink %s write failed (%d failures): %v", w.name, w.failures, err)
			}
		}
	}
}
