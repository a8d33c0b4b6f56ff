package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: "1.0"
mode: release
database:
  host: db.internal
  user: gema
  dbname: gema
auth:
  jwt_secret: from-yaml
grouping:
  excluded_names: ["Panitia"]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, []string{"Panitia"}, cfg.Grouping.ExcludedNames)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", sampleYAML)
	env := writeFile(t, dir, ".env", "GEMA_DB_PORT=3307\nGEMA_JWT_SECRET=from-env\n")

	// godotenv never overrides variables that are already set
	t.Setenv("GEMA_MODE", "dev")
	for _, k := range []string{"GEMA_DB_PORT", "GEMA_JWT_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := LoadConfig(path, env)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"), "")
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "mode: [unterminated")
	_, err = LoadConfig(bad, "")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{sql.ErrNoRows, KindNotFound},
		{fmt.Errorf("get: %w", sql.ErrNoRows), KindNotFound},
		{context.DeadlineExceeded, KindCanceled},
		{&mysql.MySQLError{Number: 1062}, KindDuplicate},
		{&mysql.MySQLError{Number: 1452}, KindForeignKey},
		{&mysql.MySQLError{Number: 1045}, KindAccessDenied},
		{&mysql.MySQLError{Number: 1213}, KindUnknown},
		{errors.New("boom"), KindUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.err), "%v", c.err)
	}
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
}

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM grup").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewTransactor(conn).InTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM grup WHERE id_kegiatan = ?", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
