package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/kalima/internal/analytics"
	"github.com/abhisek/kalima/internal/config"
	"github.com/abhisek/kalima/internal/content"
	"github.com/abhisek/kalima/internal/logging"
	"github.com/abhisek/kalima/internal/store"
)

// backend is what every command needs from the store.
type backend interface {
	store.ProgressStore
	store.ProgressQuerier
	store.LessonContent
	store.ContentWriter
}

// env holds the resolved configuration and open resources for a command.
type env struct {
	cfg       config.Config
	logger    *slog.Logger
	store     backend
	analytics *analytics.Aggregator

	closers []io.Closer
}

// Close releases the store and the log file.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: close: %v\n", err)
		}
	}
}

// resolveConfig loads the environment and applies persistent flags on top.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB.Path = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.DB.Driver = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.UserID = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openEnv resolves configuration, opens the log file and the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	memory, _ := cmd.Flags().GetBool("memory")
	var sc store.Config
	if !memory {
		sc, err = cfg.StoreConfig()
		if err != nil {
			return nil, err
		}
	}

	logPath := cfg.Log.File
	if logPath == "" && sc.Driver == store.DriverSQLite {
		logPath = logging.DefaultPath(sc.DSN)
	}
	if logPath != "" {
		logger, c, err := logging.Open(logPath, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v; logging disabled\n", err)
			e.logger = logging.Discard()
		} else {
			e.logger = logger
			e.closers = append(e.closers, c)
		}
	} else {
		e.logger = logging.Discard()
	}

	if memory {
		mem := store.NewMemory()
		if err := seedSample(cmd.Context(), mem); err != nil {
			e.Close()
			return nil, err
		}
		e.store = mem
	} else {
		st, err := store.Open(sc)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.store = st
		e.closers = append(e.closers, st)
	}

	e.analytics = analytics.NewAggregator(e.store, e.store, loc, e.logger)
	e.logger.Info("started", "command", cmd.Name(), "driver", sc.Driver, "user_id", cfg.UserID, "memory", memory)
	return e, nil
}

func seedSample(ctx context.Context, w store.ContentWriter) error {
	pack, err := content.Sample()
	if err != nil {
		return fmt.Errorf("load sample lessons: %w", err)
	}
	if _, err := content.NewImporter(w, content.DefaultSheetConfig()).Apply(ctx, pack); err != nil {
		return fmt.Errorf("seed sample lessons: %w", err)
	}
	return nil
}
