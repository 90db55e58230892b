package app

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rusk/internal/config"
	"rusk/internal/dates"
	"rusk/internal/db"
	"rusk/internal/domain"
	"rusk/internal/engine"
)

func openDB(cfg *config.Config, fs afero.Fs, log *zap.Logger) *db.DB {
	log.Debug("database path resolved", zap.String("path", cfg.DB))
	return db.Open(db.Config{Path: cfg.DB, FS: fs, Log: log})
}

// Open loads the store selected by cfg, seeding sample tasks into an empty
// store when cfg asks for it.
func Open(cfg *config.Config, fs afero.Fs, log *zap.Logger) (*engine.Engine, error) {
	e, err := engine.Open(openDB(cfg, fs, log))
	if err != nil {
		return nil, err
	}
	if cfg.SeedSample && len(e.Tasks) == 0 {
		e.Tasks = SampleTasks(time.Now())
		if err := e.DB.Save(e.Tasks); err != nil {
			return nil, fmt.Errorf("seed sample tasks: %w", err)
		}
		log.Debug("seeded sample tasks", zap.Int("count", len(e.Tasks)))
	}
	return e, nil
}

// OpenForRestore returns the store without loading it, so a corrupted main
// file does not prevent restoring the backup.
func OpenForRestore(cfg *config.Config, fs afero.Fs, log *zap.Logger) *engine.Engine {
	return engine.New(openDB(cfg, fs, log))
}

// SampleTasks returns a few example tasks dated around now.
func SampleTasks(now time.Time) []domain.Task {
	yesterday := dates.Of(now.AddDate(0, 0, -1))
	nextWeek := dates.Of(now.AddDate(0, 0, 7))
	return []domain.Task{
		{ID: 1, Text: "Try rusk: add a task with rusk add buy milk"},
		{ID: 2, Text: "Renew the library card", Date: &yesterday},
		{ID: 3, Text: "Plan the weekend trip", Date: &nextWeek},
		{ID: 4, Text: "Mark a task done with rusk mark 4", Done: true},
	}
}
