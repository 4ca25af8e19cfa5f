package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/chase3718/djpad/internal/config"
	"github.com/chase3718/djpad/internal/control"
	"github.com/chase3718/djpad/internal/engine"
	"github.com/chase3718/djpad/internal/hub"
	"github.com/chase3718/djpad/internal/inputmap"
	"github.com/chase3718/djpad/internal/midi"
	"github.com/chase3718/djpad/internal/pad"
	"github.com/chase3718/djpad/internal/server"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// watcherTick is how often the main loop gives the MIDI watcher a chance to
// rescan; the watcher applies its own rescan interval on top.
const watcherTick = 250 * time.Millisecond

// -------------------- Output --------------------

func newBackend(cfg *config.Config) pad.Backend {
	switch cfg.Output.Driver {
	case config.DriverUinput:
		return pad.NewUinput(cfg.Output.Uinput.Path, cfg.Output.Name, logger)
	case config.DriverSerial:
		return pad.NewSerial(cfg.Output.Serial.Device, cfg.Output.Serial.Baud, logger)
	}
	return nil
}

// controls routes view commands to the engine and the watcher.
type controls struct {
	eng     *engine.Engine
	watcher *midi.Watcher
}

func (c controls) Reset()           { c.eng.Reset() }
func (c controls) ToggleEmulation() { c.eng.ToggleEmulation() }

func (c controls) Scan() []midi.PortInfo {
	ports := c.watcher.Scan()
	c.eng.Scanned(len(ports))
	return ports
}

// -------------------- main --------------------

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "djpad:", err)
		os.Exit(2)
	}

	initLogger(cfg.Debug)
	logger.Info("djpad starting",
		"config", cfg.File,
		"output", cfg.Output.Driver,
		"http", cfg.HTTP.Addr,
		"preferred", strings.Join(cfg.MIDI.Preferred, ","),
		"queue", cfg.Engine.Queue,
		"refresh", cfg.Engine.Refresh,
		"debug", cfg.Debug,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer cancel()

	registry := inputmap.New()
	logger.Debug("mapping registry built", "controls", registry.Len())

	gp := pad.New(newBackend(cfg), logger)
	if !gp.Available() {
		logger.Warn("gamepad output not available, emulation disabled", "output", gp.Name())
	}

	h := hub.NewHub(logger)
	broadcaster := hub.NewBroadcaster(h, logger)

	eng := engine.New(registry, gp, engine.Options{
		Queue:   cfg.Engine.Queue,
		Refresh: cfg.Engine.Refresh,
		Logger:  logger,
		Publish: broadcaster.Publish,
	})

	watcher, err := midi.NewWatcher(midi.Options{
		Preferred: cfg.MIDI.Preferred,
		Excluded:  cfg.MIDI.Excluded,
		Rescan:    cfg.MIDI.Rescan,
		Logger:    logger,
		OnEvent:   func(ev control.Event) { eng.Enqueue(ev) },
		OnConnect: eng.Connected,
		OnDisconnect: func(err error) {
			logger.Warn("midi: disconnect, releasing pad", "err", err)
			eng.Disconnected(err)
		},
	})
	if err != nil {
		logger.Error("midi watcher init failed", "err", err)
		os.Exit(1)
	}
	defer watcher.Close()

	engineDone := make(chan struct{})
	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.Error("engine stopped", "err", err)
		}
		close(engineDone)
	}()
	go h.Run(ctx)
	go broadcaster.Run(ctx)

	if cfg.Emulation.Autostart {
		eng.SetEmulation(true)
	}

	var srv *server.Server
	serverErr := make(chan error, 1)
	if cfg.HTTP.Addr != "" {
		srv = server.New(h, broadcaster, controls{eng: eng, watcher: watcher}, eng, cfg.HTTP.Addr, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				serverErr <- err
			}
		}()
	}

	logger.Info("running, waiting for MIDI device", "inputs", strings.Join(watcher.Ports(), ", "))

	ticker := time.NewTicker(watcherTick)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			break loop
		case err := <-serverErr:
			logger.Error("http server failed", "err", err)
			cancel()
		case <-ticker.C:
			watcher.Tick()
		}
	}

	<-engineDone

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", "err", err)
		}
	}
	logger.Info("djpad stopped")
}
