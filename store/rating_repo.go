package store

import (
	"context"
	"fmt"

	"github.com/coursegrid/coursegrid/ratings"
)

type RatingRepo struct {
	db *DB
}

func NewRatingRepo(db *DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// UpsertRatings stores a scrape run's results. Found ratings also record
// the professor id so later runs can skip the search step.
func (r *RatingRepo) UpsertRatings(ctx context.Context, results map[string]ratings.Rating) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert ratings: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for prof, rating := range results {
		_, err := tx.Exec(ctx, `
INSERT INTO ratings (professor, score, avg, num_ratings, take_again, difficulty, status, pid)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (professor)
DO UPDATE SET
  score = EXCLUDED.score,
  avg = EXCLUDED.avg,
  num_ratings = EXCLUDED.num_ratings,
  take_again = EXCLUDED.take_again,
  difficulty = EXCLUDED.difficulty,
  status = EXCLUDED.status,
  pid = EXCLUDED.pid`,
			prof, rating.Score, rating.Avg, rating.NumRatings,
			rating.TakeAgain, rating.Difficulty, string(rating.Status), rating.PID)
		if err != nil {
			return fmt.Errorf("upsert rating for %s: %w", prof, err)
		}

		if rating.Status == ratings.StatusFound && rating.PID != "" {
			_, err := tx.Exec(ctx, `
INSERT INTO professor_pids (professor, pid) VALUES ($1, $2)
ON CONFLICT (professor) DO UPDATE SET pid = EXCLUDED.pid`,
				prof, rating.PID)
			if err != nil {
				return fmt.Errorf("save pid for %s: %w", prof, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ratings tx: %w", err)
	}
	return nil
}

// List returns every stored rating keyed by professor name.
func (r *RatingRepo) List(ctx context.Context) (map[string]ratings.Rating, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT professor, score, avg, num_ratings, take_again, difficulty, status, pid
FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ratings.Rating)
	for rows.Next() {
		var rt ratings.Rating
		var status string
		if err := rows.Scan(&rt.Prof, &rt.Score, &rt.Avg, &rt.NumRatings,
			&rt.TakeAgain, &rt.Difficulty, &status, &rt.PID); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		rt.Status = ratings.Status(status)
		out[rt.Prof] = rt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// SavedPIDs returns the professor-to-pid map accumulated by earlier
// scrape runs.
func (r *RatingRepo) SavedPIDs(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT professor, pid FROM professor_pids`)
	if err != nil {
		return nil, fmt.Errorf("list saved pids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var prof, pid string
		if err := rows.Scan(&prof, &pid); err != nil {
			return nil, fmt.Errorf("scan saved pid: %w", err)
		}
		out[prof] = pid
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved pids: %w", err)
	}
	return out, nil
}
