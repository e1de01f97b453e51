// Command coursegrid parses a course-schedule PDF into sections, scrapes
// professor ratings, and serves the result over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/coursegrid/coursegrid"
	"github.com/coursegrid/coursegrid/api"
	"github.com/coursegrid/coursegrid/config"
	"github.com/coursegrid/coursegrid/extract"
	"github.com/coursegrid/coursegrid/ratings"
	"github.com/coursegrid/coursegrid/store"
)

const (
	linesArtifact    = "sorted_lines.json"
	columnsArtifact  = "columns_x.json"
	sectionsArtifact = "sections.json"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cmd := &cli.Command{
		Name:  "coursegrid",
		Usage: "Parse course-schedule PDFs and serve the sections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for parse artifacts",
				Aliases: []string{"d"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Parse a schedule PDF into sections",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input schedule PDF path",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Recompute artifacts even when cached",
					},
					&cli.BoolFlag{
						Name:  "db",
						Usage: "Also store the parsed sections in Postgres",
					},
				},
				Action: runParse,
			},
			{
				Name:   "scrape",
				Usage:  "Fetch ratings for every professor in the parsed schedule",
				Action: runScrape,
			},
			{
				Name:   "serve",
				Usage:  "Serve the stored sections over HTTP",
				Action: runServe,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func dataDir(cmd *cli.Command, cfg config.Config) (string, error) {
	dir := cmd.String("data-dir")
	if dir == "" {
		dir = cfg.DataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return dir, nil
}

func runParse(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	log := slog.Default()

	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return err
	}
	force := cmd.Bool("force")

	lines, err := cachedLines(cmd.String("input"), dir, force, log)
	if err != nil {
		return err
	}

	bounds, err := cachedBounds(lines, dir, force, log)
	if err != nil {
		return err
	}

	parserCfg := coursegrid.DefaultConfig()
	parserCfg.Institution = cfg.Institution
	parserCfg.Logger = log
	sections := coursegrid.NewParser(bounds, parserCfg).Parse(lines)

	if err := coursegrid.SaveSections(filepath.Join(dir, sectionsArtifact), sections); err != nil {
		return err
	}
	log.Info("parsed schedule", "sections", len(sections))

	if !cmd.Bool("db") {
		return nil
	}

	db, err := store.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Bootstrap(ctx, db); err != nil {
		return err
	}
	if err := store.NewSectionRepo(db).ReplaceAll(ctx, sections); err != nil {
		return err
	}
	log.Info("stored sections", "count", len(sections))
	return nil
}

// cachedLines replays the line artifact when present, otherwise extracts
// words from the PDF and rebuilds it.
func cachedLines(inputPath, dir string, force bool, log *slog.Logger) (coursegrid.Lines, error) {
	path := filepath.Join(dir, linesArtifact)
	if !force {
		if lines, err := coursegrid.LoadLines(path); err == nil {
			log.Info("reusing cached lines", "path", path)
			return lines, nil
		}
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	words, err := extract.Words(instance, inputPath, extract.DefaultOptions())
	if err != nil {
		return nil, err
	}
	log.Info("extracted words", "count", len(words))

	lines := coursegrid.BuildLines(words)
	if err := coursegrid.SaveLines(path, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func cachedBounds(lines coursegrid.Lines, dir string, force bool, log *slog.Logger) (coursegrid.ColumnBounds, error) {
	path := filepath.Join(dir, columnsArtifact)
	if !force {
		if bounds, err := coursegrid.LoadColumnBounds(path); err == nil {
			log.Info("reusing cached column bounds", "path", path)
			return bounds, nil
		}
	}

	bounds, err := coursegrid.CalibrateColumns(lines)
	if err != nil {
		return coursegrid.ColumnBounds{}, err
	}
	if err := coursegrid.SaveColumnBounds(path, bounds); err != nil {
		return coursegrid.ColumnBounds{}, err
	}
	return bounds, nil
}

func runScrape(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	log := slog.Default()

	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return err
	}

	sections, err := coursegrid.LoadSections(filepath.Join(dir, sectionsArtifact))
	if err != nil {
		return err
	}

	// The trie both dedupes and survives as the name index consumed by
	// later parses for professor-name recovery.
	names := ratings.NewTrie()
	for _, s := range sections {
		for _, l := range s.LecLabs {
			if l.Professor != "" {
				names.Add(l.Professor)
			}
		}
	}
	profs := names.Words("")
	log.Info("scraping ratings", "professors", len(profs))

	db, err := store.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Bootstrap(ctx, db); err != nil {
		return err
	}

	ratingRepo := store.NewRatingRepo(db)
	savedPIDs, err := ratingRepo.SavedPIDs(ctx)
	if err != nil {
		return err
	}

	client := ratings.NewClient(cfg.RatingBaseURL, cfg.RatingSchoolID, cfg.RatingSchoolRef, log)
	results := client.LookupAll(ctx, profs, savedPIDs, cfg.ScrapeWorkers)

	if err := ratingRepo.UpsertRatings(ctx, results); err != nil {
		return err
	}

	found := 0
	for _, r := range results {
		if r.Status == ratings.StatusFound {
			found++
		}
	}
	log.Info("stored ratings", "found", found, "missing", len(results)-found)
	return nil
}

func runServe(ctx context.Context, _ *cli.Command) error {
	cfg := config.Load()
	log := slog.Default()

	db, err := store.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Bootstrap(ctx, db); err != nil {
		return err
	}

	server := api.NewServer(store.NewSectionRepo(db), log)
	log.Info("serving sections", "addr", cfg.APIAddr)
	return http.ListenAndServe(cfg.APIAddr, server.Router())
}
