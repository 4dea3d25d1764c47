// fsserver hosts every FS.* filesystem key and serves them over the wire
// protocol, the Go analogue of sandstore's cmd/server bootstrap
// (createServer/RegisterTypedHandler/WaitGroup startup/signal shutdown),
// simplified to a single node and periodic disk snapshots instead of a
// replicated chunk store.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnishMulay/redisfs/internal/config"
	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/store"
	"github.com/AnishMulay/redisfs/internal/wire"
)

func main() {
	configPath := flag.String("config", "fsserver.yaml", "path to the server config file")
	listenOverride := flag.String("listen", "", "override the config's listen address")
	flag.Parse()

	cfg, err := config.NewConfigFromFile(*configPath)
	if err != nil {
		panic(err)
	}
	if *listenOverride != "" {
		cfg.ListenAddr = *listenOverride
	}

	logging.Init(cfg.LogLevel, logging.JSONFormat)
	log := logging.New("fsserver")

	host := store.NewHost()

	if err := loadSnapshotIfPresent(host, cfg, log); err != nil {
		log.Error(logging.Event{Message: "failed to load snapshot", Metadata: map[string]any{"error": err.Error()}})
		os.Exit(1)
	}

	srv := wire.NewServer(cfg.ListenAddr, host, log)
	if err := srv.Start(); err != nil {
		log.Error(logging.Event{Message: "failed to start wire server", Metadata: map[string]any{"error": err.Error()}})
		os.Exit(1)
	}
	log.Info(logging.Event{Message: "fsserver listening", Metadata: map[string]any{"address": cfg.ListenAddr}})

	stopSnapshots := make(chan struct{})
	if cfg.SnapshotSeconds > 0 {
		go periodicSnapshot(host, cfg, log, stopSnapshots)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info(logging.Event{Message: "shutting down"})
	close(stopSnapshots)

	if err := saveSnapshot(host, cfg, log); err != nil {
		log.Error(logging.Event{Message: "failed to save snapshot on shutdown", Metadata: map[string]any{"error": err.Error()}})
	}

	if err := srv.Stop(); err != nil {
		log.Error(logging.Event{Message: "error stopping wire server", Metadata: map[string]any{"error": err.Error()}})
	}
}

func loadSnapshotIfPresent(host *store.Host, cfg *config.Config, log logging.Logger) error {
	path := cfg.SnapshotPath()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Info(logging.Event{Message: "no snapshot found, starting empty", Metadata: map[string]any{"path": path}})
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := host.LoadSnapshot(f); err != nil {
		return err
	}
	log.Info(logging.Event{Message: "loaded snapshot", Metadata: map[string]any{"path": path, "keys": len(host.Keys())}})
	return nil
}

func saveSnapshot(host *store.Host, cfg *config.Config, log logging.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	tmpPath := cfg.SnapshotPath() + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := host.SaveSnapshot(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, cfg.SnapshotPath()); err != nil {
		return err
	}
	log.Debug(logging.Event{Message: "saved snapshot", Metadata: map[string]any{"path": cfg.SnapshotPath(), "keys": len(host.Keys())}})
	return nil
}

func periodicSnapshot(host *store.Host, cfg *config.Config, log logging.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(cfg.SnapshotSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := saveSnapshot(host, cfg, log); err != nil {
				log.Error(logging.Event{Message: "periodic snapshot failed", Metadata: map[string]any{"error": err.Error()}})
			}
		case <-stop:
			return
		}
	}
}
