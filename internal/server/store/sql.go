package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/dbx"
	"github.com/xtbe/arcbp-editor/internal/models"
)

const selectColumns = `id, name, workshop, image, crafting_recipe, available, loot,
       harvester_event, quest_reward, trials_reward, created_ms, updated_ms`

// SQLRepository stores records in a SQL database. Queries are written with
// '?' placeholders and rebound for the configured dialect.
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect
}

func NewSQLRepository(db *sql.DB, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

func (r *SQLRepository) List(ctx context.Context, offset, limit int) ([]Record, error) {
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + selectColumns + ` FROM blueprints ORDER BY seq`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	} else if offset > 0 {
		// LIMIT is mandatory before OFFSET in SQLite.
		query += ` LIMIT ? OFFSET ?`
		args = append(args, int64(1<<62), offset)
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list blueprints: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blueprints: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blueprints`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blueprints: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (Record, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *SQLRepository) get(ctx context.Context, db dbx.DBTX, id string, lock bool) (Record, error) {
	query := `SELECT ` + selectColumns + ` FROM blueprints WHERE id = ?`
	if lock && r.dialect == dbx.DialectPostgres {
		query += ` FOR UPDATE`
	}

	rec, err := scanRecord(db.QueryRowContext(ctx, r.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, common.ErrNotFound
	}
	return rec, err
}

func (r *SQLRepository) Create(ctx context.Context, bp models.Blueprint) (Record, error) {
	if err := Validate(bp); err != nil {
		return Record{}, err
	}

	bp = bp.Clone()
	normalizeRecipe(&bp)
	bp.ID = NewID()
	ts := now()

	recipe, err := json.Marshal(bp.CraftingRecipe)
	if err != nil {
		return Record{}, err
	}

	_, err = r.db.ExecContext(ctx, r.q(`
		INSERT INTO blueprints (id, name, workshop, image, crafting_recipe, available, loot,
		                        harvester_event, quest_reward, trials_reward, created_ms, updated_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		bp.ID, bp.Name, bp.Workshop, bp.Image, string(recipe), bp.Available, bp.Loot,
		bp.HarvesterEvent, bp.QuestReward, bp.TrialsReward, ts.UnixMilli(), ts.UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert blueprint: %w", err)
	}

	return Record{Blueprint: bp, Created: ts, Updated: ts}, nil
}

func (r *SQLRepository) Update(ctx context.Context, id string, patch models.BlueprintPatch) (Record, error) {
	var out Record

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rec, err := r.get(ctx, tx, id, true)
		if err != nil {
			return err
		}

		bp := rec.Blueprint.Clone()
		patch.Apply(&bp)
		if err := Validate(bp); err != nil {
			return err
		}
		normalizeRecipe(&bp)

		recipe, err := json.Marshal(bp.CraftingRecipe)
		if err != nil {
			return err
		}

		ts := now()
		_, err = tx.ExecContext(ctx, r.q(`
			UPDATE blueprints
			   SET name = ?, workshop = ?, image = ?, crafting_recipe = ?, available = ?, loot = ?,
			       harvester_event = ?, quest_reward = ?, trials_reward = ?, updated_ms = ?
			 WHERE id = ?`),
			bp.Name, bp.Workshop, bp.Image, string(recipe), bp.Available, bp.Loot,
			bp.HarvesterEvent, bp.QuestReward, bp.TrialsReward, ts.UnixMilli(), id,
		)
		if err != nil {
			return fmt.Errorf("update blueprint: %w", err)
		}

		out = Record{Blueprint: bp, Created: rec.Created, Updated: ts}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM blueprints WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete blueprint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blueprint: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec       Record
		recipe    string
		createdMs int64
		updatedMs int64
	)

	err := s.Scan(
		&rec.ID, &rec.Name, &rec.Workshop, &rec.Image, &recipe,
		&rec.Available, &rec.Loot, &rec.HarvesterEvent, &rec.QuestReward, &rec.TrialsReward,
		&createdMs, &updatedMs,
	)
	if err != nil {
		return Record{}, err
	}

	if err := json.Unmarshal([]byte(recipe), &rec.CraftingRecipe); err != nil {
		return Record{}, fmt.Errorf("decode crafting_recipe of %s: %w", rec.ID, err)
	}
	normalizeRecipe(&rec.Blueprint)

	rec.Created = time.UnixMilli(createdMs).UTC()
	rec.Updated = time.UnixMilli(updatedMs).UTC()
	return rec, nil
}
