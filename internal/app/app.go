package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"

	"findingboard/internal/config"
	"findingboard/internal/digest"
	"findingboard/internal/domain"
	"findingboard/internal/httpx"
	"findingboard/internal/pivot"
	"findingboard/internal/server"
	"findingboard/internal/storage/sqlite"
	"findingboard/internal/table"
)

// Serve loads the table, starts the dashboard and, when configured, the
// digest scheduler. It returns when ctx is done or the server fails.
func Serve(ctx context.Context, cfg config.Config) error {
	logConfig(cfg)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := store.Records(ctx); err != nil {
		log.Printf("WARNING: initial table load failed, requests will retry: %v", err)
	}

	srv, err := server.New(cfg.ListenAddr, store)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if cfg.DigestEnabled() {
		api := newSlackClient(cfg)
		g.Go(func() error {
			return digest.RunScheduler(gctx, cfg, store, api)
		})
	} else {
		log.Println("Digest disabled (digest_schedule, slack_bot_token or digest_channel_id not set)")
	}
	return g.Wait()
}

// Import reads the file source (from overrides the configured paths) and
// replaces the SQLite copy of the table.
func Import(ctx context.Context, cfg config.Config, from []string) (int, error) {
	paths := cfg.DataPaths
	if len(from) > 0 {
		paths = from
	}
	src := table.FileSource{Paths: paths, Sheet: cfg.DataSheet}
	path, err := src.Resolve()
	if err != nil {
		return 0, err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return 0, fmt.Errorf("init database %s: %w", cfg.DBPath, err)
	}
	defer db.Close()

	inserted, err := sqlite.ReplaceFindings(ctx, db, path, records)
	if err != nil {
		return inserted, fmt.Errorf("storing findings: %w", err)
	}
	log.Printf("Imported %d finding rows from %s into %s", inserted, path, cfg.DBPath)
	return inserted, nil
}

// Digest builds the digest once. With dryRun (or no Slack channel) it is
// written to w instead of posted.
func Digest(ctx context.Context, cfg config.Config, dryRun bool, w io.Writer) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if dryRun || !cfg.SlackConfigured() {
		if !dryRun {
			log.Println("slack_bot_token or digest_channel_id not set, printing digest instead of posting")
		}
		records, err := store.Records(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, digest.Summarize(pivot.Compute(records, domain.Selection{}), cfg.DigestTopN))
		return err
	}

	if err := digest.Post(ctx, store, newSlackClient(cfg), cfg.DigestChannelID, cfg.DigestTopN); err != nil {
		return err
	}
	log.Printf("Digest posted to %s", cfg.DigestChannelID)
	return nil
}

func openStore(cfg config.Config) (*table.Store, func(), error) {
	switch cfg.DataSource {
	case config.DataSourceSQLite:
		db, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init database %s: %w", cfg.DBPath, err)
		}
		logLatestImport(db, cfg.DBPath)
		return table.NewStore(table.SQLiteSource{DB: db, Path: cfg.DBPath}), func() { db.Close() }, nil
	default:
		src := table.FileSource{Paths: cfg.DataPaths, Sheet: cfg.DataSheet}
		return table.NewStore(src), func() {}, nil
	}
}

func logLatestImport(db *sql.DB, path string) {
	latest, err := sqlite.LatestImport(context.Background(), db)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("WARNING: %s has no imports yet (run `findingboard import`)", path)
		return
	}
	if err != nil {
		log.Printf("Error reading import history: %v", err)
		return
	}
	log.Printf("Serving import #%d: %d rows from %s at %s", latest.ID, latest.RowCount, latest.Source, latest.ImportedAt.Format("2006-01-02 15:04"))
}

func newSlackClient(cfg config.Config) *slack.Client {
	httpClient, timeout := httpx.NewExternalClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf("Slack client timeout=%s", timeout)
	return slack.New(cfg.SlackBotToken, slack.OptionHTTPClient(httpClient))
}

func logConfig(cfg config.Config) {
	log.Printf(
		"Config loaded. DataSource=%s DataPaths=%s DataSheet=%q DBPath=%s ListenAddr=%s DigestSchedule=%q DigestTopN=%d Timezone=%s",
		cfg.DataSource,
		strings.Join(cfg.DataPaths, ","),
		cfg.DataSheet,
		cfg.DBPath,
		cfg.ListenAddr,
		cfg.DigestSchedule,
		cfg.DigestTopN,
		cfg.Timezone,
	)
}
