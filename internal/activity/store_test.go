package activity

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

var activityCols = []string{"id", "nama_giat", "tgl_giat", "tempat", "created_at"}

func TestStoreListSortAndSearch(t *testing.T) {
	tests := []struct {
		sort  Sort
		order string
	}{
		{SortNewest, "ORDER BY created_at DESC, id DESC"},
		{SortDate, "ORDER BY tgl_giat DESC, id DESC"},
		{SortPlace, "ORDER BY tempat ASC, id DESC"},
		{"", "ORDER BY created_at DESC, id DESC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			conn, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer conn.Close()

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM kegiatan WHERE (nama_giat LIKE ?`)).
				WithArgs(`%50\%%`, `%50\%%`, `%50\%%`).
				WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
			mock.ExpectQuery(regexp.QuoteMeta(tt.order + ` LIMIT ? OFFSET ?`)).
				WithArgs(`%50\%%`, `%50\%%`, `%50\%%`, int64(10), int64(0)).
				WillReturnRows(sqlmock.NewRows(activityCols).AddRow(1, "Diskon 50%", t0, "Aula", t0))

			items, total, err := NewStore(conn).List(context.Background(), Filter{Query: " 50% ", Sort: tt.sort, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			require.Len(t, items, 1)
			assert.Equal(t, "Aula", items[0].Place)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteCascadesInTransaction(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM absensi WHERE kegiatan_id = ?`)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM grup WHERE id_kegiatan = ?`)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kegiatan WHERE id = ?`)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	svc := NewService(conn)
	err = svc.Delete(context.Background(), 5)
	assert.Equal(t, 404, toHTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
