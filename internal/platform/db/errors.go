package db

import (
	"context"
	"database/sql"
	"errors"

	mysql "github.com/go-sql-driver/mysql"
)

// Kind classifies a persistence failure. Callers branch on the kind only;
// the driver error itself is logged, never parsed further.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicate
	KindForeignKey
	KindAccessDenied
	KindCanceled
)

func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, sql.ErrNoRows) {
		return KindNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062:
			return KindDuplicate
		case 1451, 1452:
			return KindForeignKey
		case 1044, 1045, 1142, 1143:
			return KindAccessDenied
		case 1146:
			return KindNotFound
		}
	}
	return KindUnknown
}

func IsDuplicateKey(err error) bool { return Classify(err) == KindDuplicate }
