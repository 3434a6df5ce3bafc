package store

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/dbx"
	"github.com/xtbe/arcbp-editor/internal/models"
)

var recordColumns = []string{
	"id", "name", "workshop", "image", "crafting_recipe", "available", "loot",
	"harvester_event", "quest_reward", "trials_reward", "created_ms", "updated_ms",
}

func newPostgresMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db, dbx.DialectPostgres), mock
}

func TestSQLRepository_Postgres_UpdateLocksRow(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM blueprints WHERE id = \$1 FOR UPDATE`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
			"abc", "Anvil", "Forge", "", `[{"item":"Iron","quantity":2}]`,
			true, false, false, false, false, int64(1000), int64(1000),
		))
	mock.ExpectExec(`UPDATE blueprints\s+SET name = \$1, .* WHERE id = \$11`).
		WithArgs("Anvil", "Forge", "", `[{"item":"Iron","quantity":2}]`, false, false,
			false, false, false, sqlmock.AnyArg(), "abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := repo.Update(context.Background(), "abc", models.BlueprintPatch{Available: models.Ptr(false)})
	require.NoError(t, err)
	assert.False(t, rec.Available)
	assert.Equal(t, []models.RecipeItem{{Item: "Iron", Quantity: 2}}, rec.CraftingRecipe)
	assert.Equal(t, int64(1000), rec.Created.UnixMilli())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Postgres_UpdateNotFoundRollsBack(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM blueprints WHERE id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordColumns))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "missing", models.BlueprintPatch{Name: models.Ptr("x")})
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Postgres_ListPaged(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectQuery(`SELECT .* FROM blueprints ORDER BY seq LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 4).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("a", "A", "", "", `[]`, false, false, false, false, false, int64(1), int64(1)).
			AddRow("b", "B", "", "", `null`, false, true, false, false, false, int64(2), int64(2)))

	recs, err := repo.List(context.Background(), 4, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].ID)
	assert.True(t, recs[1].Loot)
	assert.Equal(t, []models.RecipeItem{}, recs[1].CraftingRecipe)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Postgres_DeleteNotFound(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectExec(`DELETE FROM blueprints WHERE id = \$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "gone")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_QueryErrorWrapped(t *testing.T) {
	repo, mock := newPostgresMock(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM blueprints`).WillReturnError(boom)

	_, err := repo.Count(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count blueprints")
}

func TestOpen_MigrationFailureClosesDB(t *testing.T) {
	orig := migrate
	t.Cleanup(func() { migrate = orig })

	boom := errors.New("migration failed")
	var gotDialect goose.Dialect
	migrate = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
		gotDialect = dialect
		return boom
	}

	_, _, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, goose.DialectSQLite3, gotDialect)
}
