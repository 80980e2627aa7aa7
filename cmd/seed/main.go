// Seed tool: fills the posts table with synthetic rows for local development
// and dashboard testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"contentdesk/internal/config"
	"contentdesk/internal/db"
	"contentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var statuses = []models.PostStatus{
	models.StatusDraft,
	models.StatusReviewed,
	models.StatusPublished,
	models.StatusArchived,
}

func main() {
	var numPosts, batchSize, numAuthors int
	flag.IntVar(&numPosts, "posts", 1000, "number of posts to insert")
	flag.IntVar(&batchSize, "batch", 500, "insert batch size")
	flag.IntVar(&numAuthors, "authors", 20, "number of distinct authors")
	flag.Parse()

	cfg := config.Load()
	cfg.SetupLogger()

	// Schema is owned by the application; run migrations before seeding.
	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	defer pool.Close()

	start := time.Now()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	if err := seed(ctx, pool, r, numPosts, batchSize, numAuthors); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("posts", numPosts).Dur("took", time.Since(start).Truncate(time.Millisecond)).Msg("done")
}

func seed(ctx context.Context, pool *pgxpool.Pool, r *rand.Rand, numPosts, batchSize, numAuthors int) error {
	if numAuthors < 1 {
		numAuthors = 1
	}
	authors := make([]string, numAuthors)
	for i := range authors {
		authors[i] = "author-" + uuid.NewString()[:8]
	}

	now := time.Now()
	yearAgo := now.Add(-365 * 24 * time.Hour)

	batch := &pgx.Batch{}
	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		br := pool.SendBatch(ctx, batch)
		for i := 0; i < pending; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("batch close: %w", err)
		}
		batch = &pgx.Batch{}
		pending = 0
		return nil
	}

	for i := 0; i < numPosts; i++ {
		createdAt := yearAgo.Add(time.Duration(r.Int63n(int64(now.Sub(yearAgo)))))
		updatedAt := createdAt.Add(time.Duration(r.Int63n(int64(now.Sub(createdAt)) + 1)))
		batch.Queue(
			`INSERT INTO posts (title, content, status, created_at, updated_at, author, likes) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			fmt.Sprintf("Post #%d", i+1),
			fmt.Sprintf("# Post %d\n\nGenerated content.", i+1),
			string(statuses[r.Intn(len(statuses))]),
			createdAt,
			updatedAt,
			authors[r.Intn(len(authors))],
			r.Intn(100),
		)
		pending++
		if pending >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
