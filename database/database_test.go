package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/waterlily/config"
	"github.com/mbolis/waterlily/database"
	"github.com/mbolis/waterlily/database/dbtest"
)

func TestOpenMigratesSchema(t *testing.T) {
	db := dbtest.Open(t)

	for _, table := range []string{"users", "surveys", "questions", "responses"} {
		var n int
		err := db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestOpenTwiceIsNoChange(t *testing.T) {
	cfg := config.Config{DBDriver: "sqlite3", DBUrl: filepath.Join(t.TempDir(), "twice.sqlite")}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestSurveyDeleteCascades(t *testing.T) {
	db := dbtest.Open(t)

	db.MustExec(`INSERT INTO surveys (id, title, created_at) VALUES ('s1', 'T', '2026-01-01T00:00:00.000Z')`)
	db.MustExec(`INSERT INTO questions (id, survey_id, position, text) VALUES ('q1', 's1', 0, 'Q')`)
	db.MustExec(`INSERT INTO responses (id, survey_id, submitted_at, answers_json) VALUES ('r1', 's1', '2026-01-01T00:00:00.000Z', '{}')`)

	db.MustExec(`DELETE FROM surveys WHERE id = 's1'`)

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM questions"))
	assert.Zero(t, n)
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM responses"))
	assert.Zero(t, n)
}

func TestQuestionNeedsExistingSurvey(t *testing.T) {
	db := dbtest.Open(t)

	_, err := db.Exec(`INSERT INTO questions (id, survey_id, position, text) VALUES ('q1', 'missing', 0, 'Q')`)
	assert.Error(t, err)
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	boom := errors.New("boom")

	err := db.InTx(context.Background(), func(tx *sqlx.Tx) error {
		tx.MustExec(`INSERT INTO surveys (id, title, created_at) VALUES ('s1', 'T', '2026-01-01T00:00:00.000Z')`)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM surveys"))
	assert.Zero(t, n)
}

func TestInTxCommits(t *testing.T) {
	db := dbtest.Open(t)

	err := db.InTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec(tx.Rebind(`INSERT INTO surveys (id, title, created_at) VALUES (?, ?, ?)`),
			"s1", "T", "2026-01-01T00:00:00.000Z")
		return err
	})
	require.NoError(t, err)

	var title string
	require.NoError(t, db.Get(&title, "SELECT title FROM surveys WHERE id = 's1'"))
	assert.Equal(t, "T", title)
}

func TestIsUniqueViolation(t *testing.T) {
	db := dbtest.Open(t)

	db.MustExec(`INSERT INTO users (id, email, password_hash) VALUES ('u1', 'a@example.com', 'x')`)
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ('u2', 'a@example.com', 'x')`)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	_, err = db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ('u1', 'b@example.com', 'x')`)
	require.Error(t, err)
	assert.False(t, database.IsUniqueViolation(err), "primary key collision is not a duplicate email")

	assert.True(t, database.IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("unique")))
}
