package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"rbac-janitor/internal/app"
	"rbac-janitor/internal/config"
	internaldb "rbac-janitor/internal/db"
)

// runtime bundles everything a command needs: config, logger, database
// pools, and the wired application.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	writeDB *sql.DB
	readDB  *sql.DB
	app     *app.App
}

// openRuntime loads config, opens the database pair, runs migrations, and
// wires the application. The caller must close() when done.
func openRuntime() (*runtime, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		writeDB: writeDB,
		readDB:  readDB,
		app: app.New(app.Deps{
			Cfg:     cfg,
			WriteDB: writeDB,
			ReadDB:  readDB,
			Logger:  logger,
		}),
	}, nil
}

func (r *runtime) close() {
	_ = r.writeDB.Close()
	_ = r.readDB.Close()
}
