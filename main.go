package main

import (
	"errors"
	"flag"
	"math/rand/v2"
	"net/http"
	"time"

	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/sandbox"
	"github.com/automoto/anticipation-mp/scenes"
	"github.com/automoto/anticipation-mp/server/core"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/protocol"
	"github.com/automoto/anticipation-mp/systems"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = systems.InitPersistence("anticipation-mp")
	systems.ApplySavedSettings()

	latency := flag.Float64("latency", cfg.Net.Latency, "One-way link latency in seconds")
	jitter := flag.Float64("jitter", cfg.Net.Jitter, "Link jitter in seconds")
	duration := flag.Float64("duration", 20, "Virtual seconds to run")
	clients := flag.Int("clients", 2, "Number of bot clients")
	smoothTime := flag.Float64("smooth-time", cfg.Anticipation.SmoothTime, "Seconds a transform correction is eased in")
	smoothDistance := flag.Float64("smooth-distance", cfg.Anticipation.SmoothDistance, "Corrections at or beyond this distance snap")
	negligible := flag.Float64("negligible-distance", cfg.Anticipation.NegligibleDistance, "Corrections at or below this distance are dropped")
	variableSmooth := flag.Float64("value-smooth-time", cfg.Anticipation.VariableSmoothTime, "Seconds a value correction is eased in")
	ticksAgo := flag.Int("ticks-ago", cfg.Net.ObserverTicksAgo, "Render delay of followed entities in ticks")
	changeAt := flag.Float64("change-at", 0, "Double the latency at this virtual time (0 = never)")
	arenaName := flag.String("arena", "", "Arena to load")
	seed := flag.Uint64("seed", 1, "Random seed")
	report := flag.Float64("report", 1, "Seconds between reports")
	save := flag.Bool("save-settings", false, "Persist the tuning for the next run")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (empty = off)")
	logLevel := flag.String("log-level", "info", "Log level")
	connect := flag.String("connect", "", "Play one bot against a server at host:port instead of the sandbox")
	version := flag.String("version", "dev", "Client version sent with the join request")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	cfg.Net.Latency = *latency
	cfg.Net.Jitter = *jitter
	cfg.Net.ObserverTicksAgo = *ticksAgo
	cfg.Anticipation.SmoothTime = *smoothTime
	cfg.Anticipation.SmoothDistance = *smoothDistance
	cfg.Anticipation.NegligibleDistance = *negligible
	cfg.Anticipation.VariableSmoothTime = *variableSmooth

	if *save {
		if err := systems.SaveCurrentSettings(); err != nil {
			log.WithError(err).Warn("Settings not saved")
		}
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	a, err := core.LoadArena("", *arenaName)
	if err != nil {
		log.Fatalf("Failed to load arena: %v", err)
	}

	if *connect != "" {
		runRemote(*connect, *version, a, *seed, *duration, *report)
		return
	}

	sb := sandbox.New(a, *seed)
	for i := range *clients {
		if _, err := sb.AddClient(clientName(i)); err != nil {
			log.Fatalf("Failed to add client: %v", err)
		}
	}

	log.Infof("Running sandbox for %.1fs with %d clients (latency %.3fs, jitter %.3fs)",
		*duration, *clients, *latency, *jitter)

	if *changeAt > 0 && *changeAt < *duration {
		sb.Run(*changeAt, *report, sandbox.LogReport)
		sb.SetConditions(*latency*2, *jitter)
	}
	sb.Run(*duration, *report, sandbox.LogReport)
	sandbox.LogReport(sb)
}

// runRemote drives one bot client over a websocket in real time.
func runRemote(address, version string, a *arena.Arena, seed uint64, duration, reportEvery float64) {
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	client := network.NewClient()
	bot := systems.NewBot(cfg.Bot, rand.New(rand.NewPCG(seed, seed+7)))
	scene := scenes.NewNetworkedScene(client, client.Token(), a, bot, seed)

	client.Connect(address, version, clientName(0))
	defer client.Disconnect()

	dt := cfg.Movement.FixedDelta
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	var elapsed, sinceReport float64
	for range ticker.C {
		if client.State() == network.StateError {
			log.Fatalf("Connection failed: %v", client.LastError())
		}
		scene.Update(dt)
		elapsed += dt
		sinceReport += dt

		if reportEvery > 0 && sinceReport >= reportEvery {
			sinceReport = 0
			fields := log.Fields{
				"state":     client.State(),
				"updates":   scene.Updates(),
				"rtt":       scene.Clock().LastRoundTripTime(),
				"followers": len(scene.Followed()),
			}
			if p, ok := scene.LocalPlayer(); ok {
				fields["pending"] = p.Reconciler.History().Len()
				fields["position"] = p.Transform.Anticipated().Position
			}
			log.WithFields(fields).Info("[client] report")
		}
		if elapsed >= duration {
			return
		}
	}
}

func clientName(i int) string {
	return "bot-" + string(rune('a'+i%26))
}
