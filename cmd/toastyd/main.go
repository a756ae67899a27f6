// Package main is the entry point for the toastyd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/toasty/internal/daemon"
)

// Build-time variables
var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toasty/toastyd.toml)")
	historyPath := flag.String("history-file", "", "Path to history file, or - to disable history")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")
	debug := flag.Bool("debug", false, "Enable debug logging")
	noDBus := flag.Bool("no-dbus", false, "Do not claim the session bus name")
	noAudio := flag.Bool("no-audio", false, "Disable notification sounds")
	noHotReload := flag.Bool("no-hot-reload", false, "Do not watch config and theme files")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastyd version", version)
		os.Exit(0)
	}

	logger, closeLog, err := setupLogger(*logFile, *debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toastyd:", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	d, err := daemon.New(daemon.Options{
		ConfigPath:  *configPath,
		HistoryPath: *historyPath,
		Version:     version,
		Logger:      logger,
		NoDBus:      *noDBus,
		NoAudio:     *noAudio,
		NoHotReload: *noHotReload,
	})
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting toastyd", "version", version)
	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
	logger.Info("toastyd stopped")
}

// setupLogger logs to a file when one is given. Otherwise only warnings reach
// stderr, since the terminal belongs to the notification surface.
func setupLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	} else if !debug {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}
