package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/config"
	"github.com/jfmyers9/earshot/internal/daemon"
	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/remote"
	"github.com/jfmyers9/earshot/internal/track"
	"github.com/jfmyers9/earshot/pkg/audd"
)

// resolveDataDir returns the data directory, creating it if needed
func resolveDataDir() (string, error) {
	dataDir := dataDirFlag
	if dataDir == "" {
		var err error
		dataDir, err = daemon.DefaultDataDir()
		if err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dataDir, nil
}

func openQueue(dataDir string) (*recognitionqueue.Queue, error) {
	q, err := recognitionqueue.NewQueue(filepath.Join(dataDir, "queue.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open queue: %w", err)
	}
	return q, nil
}

func openLibrary(dataDir string) (*track.Store, error) {
	s, err := track.NewStore(filepath.Join(dataDir, "library.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return s, nil
}

// zerologDebugf adapts a zerolog logger to the audd client's Logger
type zerologDebugf struct {
	logger zerolog.Logger
}

func (l zerologDebugf) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// newRecognizer builds the AudD-backed recognizer from configuration
func newRecognizer(cfg *config.Config, logger zerolog.Logger) *remote.AuddRecognizer {
	client := audd.NewClient(audd.Config{
		APIToken: cfg.AudD.APIToken,
		BaseURL:  cfg.AudD.BaseURL,
		Return:   cfg.AudD.Return,
		Logger:   zerologDebugf{logger: logger.With().Str("component", "audd").Logger()},
	})
	return remote.NewAuddRecognizer(client, logger)
}

// logLevel returns the --log-level flag or fallback when it is unset
func logLevel(fallback string) string {
	if logLevelFlag == "" {
		return fallback
	}
	return logLevelFlag
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, levelName string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch levelName {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
