package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mslabba/gst-invoice-generator/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))

	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicateKeyErr(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoices.seller_id, invoices.invoice_number")))
}

type numbered struct {
	ID     int64  `gorm:"primaryKey"`
	Number string `gorm:"uniqueIndex"`
}

func TestIsDuplicateKeyErrOnSQLite(t *testing.T) {
	conn := dbtest.New(t, &numbered{})
	require.NoError(t, conn.Create(&numbered{ID: 1, Number: "INV-000001"}).Error)

	err := conn.Create(&numbered{ID: 2, Number: "INV-000001"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyErr(err))
}
