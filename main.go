package main

import (
	"codeberg.org/miketth/ergolayer/pkg/config"
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/evdevio"
	"codeberg.org/miketth/ergolayer/pkg/indicator"
	"codeberg.org/miketth/ergolayer/pkg/keymap/blowrak"
	"codeberg.org/miketth/ergolayer/pkg/metrics"
	"codeberg.org/miketth/ergolayer/pkg/statsstore"
	"codeberg.org/miketth/ergolayer/pkg/statsstore/json"
	"codeberg.org/miketth/ergolayer/pkg/statsstore/memory"
	"codeberg.org/miketth/ergolayer/pkg/statsstore/sqlite"
	"codeberg.org/miketth/ergolayer/pkg/statusapi"
	"codeberg.org/miketth/ergolayer/pkg/unicodeinput"
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml (default "+config.DefaultPath()+")")
	device := flag.String("device", "", "keyboard event device path or name, overrides the config")
	variant := flag.String("variant", "", "keymap variant, one of: "+strings.Join(blowrak.Names(), ", "))
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *variant != "" {
		cfg.Variant = *variant
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	km, err := blowrak.Lookup(cfg.Variant)
	if err != nil {
		return fmt.Errorf("lookup variant: %w", err)
	}
	matrix, err := cfg.ResolveMatrix(km.Matrix)
	if err != nil {
		return fmt.Errorf("resolve matrix: %w", err)
	}
	if err := matrix.Check(km.Keymap); err != nil {
		return fmt.Errorf("check matrix: %w", err)
	}
	idleTimeout := km.IdleTimeout
	if cfg.IdleTimeout != nil {
		idleTimeout = *cfg.IdleTimeout
	}
	unicodeMode, err := unicodeinput.ParseMode(cfg.UnicodeMode)
	if err != nil {
		return fmt.Errorf("parse unicode mode: %w", err)
	}
	leds, err := cfg.ResolveLEDs()
	if err != nil {
		return fmt.Errorf("resolve leds: %w", err)
	}

	path := cfg.Device
	if strings.HasPrefix(path, "/") {
		if err := evdevio.WaitForDevice(ctx, path, log); err != nil {
			return fmt.Errorf("wait for keyboard: %w", err)
		}
	}
	path, err = evdevio.ResolveDevice(path)
	if err != nil {
		return fmt.Errorf("resolve device: %w", err)
	}

	clock := clockwork.NewRealClock()

	source, err := evdevio.OpenSource(path, cfg.Grab, clock, log)
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer source.Close()

	host, err := evdevio.NewVirtualKeyboard(km.Name+" (ergolayer)", unicodeMode)
	if err != nil {
		return fmt.Errorf("create virtual keyboard: %w", err)
	}
	defer host.Close()

	indicators := indicator.Multi{evdevio.NewLEDIndicator(source, leds...)}
	var opts []ergolayer.Option
	if cfg.Backlight.LED != "" {
		backlight, err := indicator.OpenBacklight(cfg.Backlight.SysfsRoot, cfg.Backlight.LED)
		if err != nil {
			return fmt.Errorf("open backlight: %w", err)
		}
		indicators = append(indicators, backlight)
		opts = append(opts, ergolayer.WithBacklight(backlight))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewObserver(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	opts = append(opts, ergolayer.WithObservers(observer))

	errChan := make(chan error, 4)
	var wg sync.WaitGroup

	stats, closeStats, err := openStatsStore(ctx, cfg, km.Name, log, &wg, errChan)
	if err != nil {
		return fmt.Errorf("open stats store: %w", err)
	}
	defer func() {
		if err := closeStats(); err != nil {
			log.Errorw("failed to close stats store", "error", err)
		}
	}()

	var flusher *statsstore.Flusher
	if stats != nil {
		tally := ergolayer.NewTally()
		opts = append(opts, ergolayer.WithObservers(tally))

		flusher, err = statsstore.NewFlusher(tally, stats, cfg.Stats.FlushInterval, clock, log)
		if err != nil {
			return fmt.Errorf("create flusher: %w", err)
		}
		flusher.Start()
	}

	responder := ergolayer.NewResponder(ergolayer.Config{
		Keymap:      km.Keymap,
		Matrix:      matrix,
		IdleTimeout: idleTimeout,
		TappingTerm: cfg.TappingTerm,
	}, clock, host, indicators, log, opts...)

	log.Infow("started ergolayer",
		"keyboard", source.Name(),
		"variant", km.Name,
		"layers", len(km.Keymap.Layers),
		"idle_timeout", idleTimeout,
		"unicode", unicodeMode,
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		err := responder.Run(ctx, source, cfg.TickInterval)
		if err != nil {
			errChan <- fmt.Errorf("run responder: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx, km.Name)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	if cfg.Status.Listen != "" {
		api := statusapi.NewServer(responder, stats, reg, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := api.Run(ctx, cfg.Status.Listen)
			if err != nil {
				errChan <- fmt.Errorf("status api: %w", err)
			}
		}()
	}

	err = <-errChan
	cancel()
	// a blocked read only returns once the device is gone, the deferred Close is a no-op
	_ = source.Close()
	wg.Wait()

	if flusher != nil {
		if ferr := flusher.Stop(); ferr != nil {
			log.Errorw("failed to flush press counts", "error", ferr)
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		return nil
	case err != nil:
		return err
	}

	return nil
}

// openStatsStore opens the configured press count backend. It returns a nil store
// when stats are disabled.
func openStatsStore(
	ctx context.Context,
	cfg config.Config,
	keymapName string,
	log *zap.SugaredLogger,
	wg *sync.WaitGroup,
	errChan chan<- error,
) (ergolayer.StatsStore, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Stats.Backend {
	case config.BackendNone:
		return nil, nop, nil

	case config.BackendMemory:
		return memory.NewStatsStore(), nop, nil
	}

	path, err := cfg.StatsPath()
	if err != nil {
		return nil, nil, err
	}
	log.Infow("using stats store", "backend", cfg.Stats.Backend, "path", path)

	if cfg.Stats.Backend == config.BackendJSON {
		store, err := json.NewStatsStore(path, keymapName)
		if err != nil {
			return nil, nil, err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.SaveLooper(ctx, json.DefaultSaveInterval)
			if err != nil {
				errChan <- fmt.Errorf("save stats: %w", err)
			}
		}()

		// the flusher runs after the save looper stopped, so save once more
		return store, func() error {
			return multierr.Combine(store.Save(), store.Close())
		}, nil
	}

	store, err := sqlite.NewStatsStore(path, keymapName, log)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func systemdNotifyLoop(ctx context.Context, keymapName string) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Typing on "+keymapName+" ⌨️")

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
