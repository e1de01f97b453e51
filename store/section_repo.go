package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/coursegrid/coursegrid"
)

// ErrNotFound is returned when a lookup by id matches no section.
var ErrNotFound = errors.New("section not found")

type SectionRepo struct {
	db *DB
}

func NewSectionRepo(db *DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// ReplaceAll swaps the stored schedule for a freshly parsed one in a
// single transaction. Each parse run supersedes the previous semester
// snapshot wholesale; section ids are only stable within one run.
func (r *SectionRepo) ReplaceAll(ctx context.Context, sections []coursegrid.Section) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx replace sections: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `TRUNCATE sections CASCADE`); err != nil {
		return fmt.Errorf("truncate sections: %w", err)
	}

	for _, s := range sections {
		grid, err := json.Marshal(s.ViewGrid)
		if err != nil {
			return fmt.Errorf("marshal view grid for section %d: %w", s.ID, err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO sections (id, course, section, domain, code, title, more, view_grid)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.Course, s.Section, s.Domain, s.Code, s.Title, s.More, grid)
		if err != nil {
			return fmt.Errorf("insert section %d: %w", s.ID, err)
		}

		for pos, l := range s.LecLabs {
			times, err := json.Marshal(l.Time)
			if err != nil {
				return fmt.Errorf("marshal times for section %d: %w", s.ID, err)
			}
			_, err = tx.Exec(ctx, `
INSERT INTO leclabs (section_id, position, title, kind, professor, times)
VALUES ($1, $2, $3, $4, $5, $6)`,
				s.ID, pos, l.Title, l.Kind.String(), l.Professor, times)
			if err != nil {
				return fmt.Errorf("insert occurrence %d of section %d: %w", pos, s.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sections tx: %w", err)
	}
	return nil
}

// List returns the sections matching the SQL-expressible part of f, in id
// order, with occurrences attached. Time-of-day constraints are applied
// afterwards by the caller via f.MatchesSchedule.
func (r *SectionRepo) List(ctx context.Context, f Filter) ([]coursegrid.Section, error) {
	query, args := f.BuildQuery()
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := make([]coursegrid.Section, 0, 64)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	for i := range sections {
		leclabs, err := r.listLecLabs(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].LecLabs = leclabs
	}
	return sections, nil
}

// Get returns one section by id, or ErrNotFound.
func (r *SectionRepo) Get(ctx context.Context, id int) (coursegrid.Section, error) {
	row := r.db.Pool.QueryRow(ctx, `
SELECT id, course, section, domain, code, title, more, view_grid
FROM sections WHERE id = $1`, id)

	s, err := scanSection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return coursegrid.Section{}, ErrNotFound
	}
	if err != nil {
		return coursegrid.Section{}, err
	}

	s.LecLabs, err = r.listLecLabs(ctx, s.ID)
	if err != nil {
		return coursegrid.Section{}, err
	}
	return s, nil
}

func scanSection(row pgx.Row) (coursegrid.Section, error) {
	var s coursegrid.Section
	var grid []byte
	if err := row.Scan(&s.ID, &s.Course, &s.Section, &s.Domain, &s.Code, &s.Title, &s.More, &grid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coursegrid.Section{}, err
		}
		return coursegrid.Section{}, fmt.Errorf("scan section: %w", err)
	}
	if err := json.Unmarshal(grid, &s.ViewGrid); err != nil {
		return coursegrid.Section{}, fmt.Errorf("unmarshal view grid for section %d: %w", s.ID, err)
	}
	return s, nil
}

func (r *SectionRepo) listLecLabs(ctx context.Context, sectionID int) ([]coursegrid.LecLab, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT title, kind, professor, times
FROM leclabs WHERE section_id = $1 ORDER BY position`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list occurrences for section %d: %w", sectionID, err)
	}
	defer rows.Close()

	var leclabs []coursegrid.LecLab
	for rows.Next() {
		var l coursegrid.LecLab
		var kind string
		var times []byte
		if err := rows.Scan(&l.Title, &kind, &l.Professor, &times); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		l.SectionID = sectionID
		l.Kind = coursegrid.ParseMeetingKind(kind)
		if err := json.Unmarshal(times, &l.Time); err != nil {
			return nil, fmt.Errorf("unmarshal times: %w", err)
		}
		leclabs = append(leclabs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrences: %w", err)
	}
	return leclabs, nil
}
