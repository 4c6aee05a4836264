package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/server/core"
	"github.com/automoto/anticipation-mp/shared/protocol"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	port := flag.Uint("port", 7373, "Server port")
	tickRate := flag.Int("tickrate", config.Net.TickRate, "Server tick rate (updates per second)")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	assetsDir := flag.String("assets", "", "Directory holding levels/*.tmx (empty = embedded arenas)")
	arenaName := flag.String("arena", "", "Arena to load")
	seed := flag.Uint64("seed", 1, "Seed for authority-picked values")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (empty = off)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	config.Net.TickRate = *tickRate

	a, err := core.LoadArena(*assetsDir, *arenaName)
	if err != nil {
		log.Fatalf("Failed to load arena: %v", err)
	}

	sim := core.NewSimulation(a, *seed)
	server := core.NewServer(sim, *tickRate, *version)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Infof("Starting anticipation server on port %d (tick rate: %d/s, version: %q)", *port, *tickRate, *version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
