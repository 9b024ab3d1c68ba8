// Command pcd runs the pseudo character device driver with an interactive
// shell standing in for the kernel's file operation dispatch.
//
// Usage:
//
//	pcd [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-trace string       File path for access event tracing (CBOR format)
//	-trace-console      Mirror access events to the log
//
// Examples:
//
//	# Start with the reference four-device table
//	pcd
//
//	# Start with a custom table and record every access
//	pcd -config /etc/pcd/devices.yaml -trace /tmp/pcd.trace
//
//	# Watch driver decisions as they happen
//	pcd -log-level debug -trace-console
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcd-emu/pcd-go/cmd/pcd/shell"
	"github.com/pcd-emu/pcd-go/pkg/config"
	pcdlog "github.com/pcd-emu/pcd-go/pkg/log"
	"github.com/pcd-emu/pcd-go/pkg/service"
)

var (
	configFile   = flag.String("config", "", "Configuration file path (YAML)")
	logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	tracePath    = flag.String("trace", "", "File path for access event tracing (CBOR format, overrides config)")
	traceConsole = flag.Bool("trace-console", false, "Mirror access events to the log")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pcd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg.LogLevel)
	if err != nil {
		return err
	}

	accessLogger, closeTrace, err := setupTrace(cfg.Trace, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	table, err := cfg.Table()
	if err != nil {
		return fmt.Errorf("invalid device table: %w", err)
	}

	driverCfg := service.DefaultDriverConfig()
	driverCfg.Logger = logger
	driverCfg.AccessLogger = accessLogger
	driver := service.NewDriver(table, driverCfg)
	defer driver.ReleaseAll()

	logger.Info("driver loaded", "devices", table.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sh := shell.New(driver, os.Stdout)
	defer sh.Close()

	if err := sh.Run(ctx); err != nil {
		return err
	}

	logger.Info("driver unloaded")
	return nil
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return nil, err
		}
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *tracePath != "" {
		cfg.Trace.Path = *tracePath
	}
	if *traceConsole {
		cfg.Trace.Console = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(handler), nil
}

// setupTrace builds the access logger from the trace settings. The returned
// function closes the trace file.
func setupTrace(trace config.Trace, logger *slog.Logger) (pcdlog.Logger, func(), error) {
	var loggers []pcdlog.Logger
	closeFn := func() {}

	if trace.Path != "" {
		fl, err := pcdlog.NewFileLogger(trace.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		logger.Info("access trace enabled", "path", trace.Path)
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Error("closing trace file", "error", err)
			}
		}
	}
	if trace.Console {
		loggers = append(loggers, pcdlog.NewSlogAdapter(logger))
	}

	switch len(loggers) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return pcdlog.NewMultiLogger(loggers...), closeFn, nil
	}
}
