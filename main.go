package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"novastrike/engine/internal/nova"
	"novastrike/engine/internal/sim"
	"novastrike/engine/internal/telemetry"
	"novastrike/engine/logging"
	"novastrike/engine/logging/sinks"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address for the diagnostics endpoint")
		sinkList   = flag.String("sinks", "console,hub", "comma-separated sinks: console, json, hub")
		eventsPath = flag.String("events-file", "", "path for the json sink (stdout when empty)")
		severity   = flag.Int("severity", int(logging.SeverityInfo), "minimum event severity (0=debug .. 3=error)")
		seed       = flag.Int64("seed", 1, "battlefield scenario seed")
	)
	flag.Parse()

	hub := newHub()

	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = strings.Split(*sinkList, ",")
	cfg.MinimumSeverity = logging.Severity(*severity)

	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)})
	}
	if cfg.HasSink("json") {
		out := os.Stdout
		if *eventsPath != "" {
			f, err := os.OpenFile(*eventsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				log.Fatalf("open events file: %v", err)
			}
			defer f.Close()
			out = f
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSONSink(out, cfg.JSON.FlushInterval)})
	}
	if cfg.HasSink("hub") {
		named = append(named, logging.NamedSink{Name: "hub", Sink: hub})
	}

	router, err := logging.NewRouter(nil, cfg, named)
	if err != nil {
		log.Fatalf("logging router: %v", err)
	}

	counters := telemetry.NewCounters()
	deps := nova.Deps{Publisher: router, Metrics: counters}
	battlefield := NewBattlefield(deps, *seed)

	loop := sim.NewLoop(sim.DefaultConfig(), telemetry.WrapLogger(log.Default()), battlefield.Advance)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go loop.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		// Everything here must be safe to read off the loop goroutine: the
		// tick is atomic and the active-nova count comes from the gauge the
		// coordinator stores each tick, not from the live projectile set.
		stats := router.Stats()
		snapshot := map[string]any{
			"tick":        loop.Tick(),
			"activeNovas": counters.Value("nova.active"),
			"subscribers": hub.SubscriberCount(),
			"events":      stats.EventsTotal,
			"dropped":     stats.DroppedTotal,
		}
		for _, key := range counters.Keys() {
			snapshot[key] = counters.Value(key)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot)
	})

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		router.Close(shutdownCtx)
	}()

	log.Printf("nova engine listening on %s (tick rate %.1f Hz)", *addr, sim.DefaultConfig().TickRate)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}
