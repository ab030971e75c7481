package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/cernol/formintake/pkg/pg"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	check := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514", ConstraintName: "quotes_budget_check"})
	notNull := &pgconn.PgError{Code: "23502"}
	badUUID := &pgconn.PgError{Code: "22P02"}
	tooLong := &pgconn.PgError{Code: "22001"}
	shutdown := &pgconn.PgError{Code: "57P01"}

	assert.True(t, pg.IsCheckViolationError(check))
	assert.Equal(t, "quotes_budget_check", pg.ConstraintName(check))
	assert.False(t, pg.IsCheckViolationError(notNull))

	assert.True(t, pg.IsNotNullViolationError(notNull))
	assert.True(t, pg.IsInvalidTextError(badUUID))
	assert.True(t, pg.IsStringTooLongError(tooLong))
	assert.False(t, pg.IsStringTooLongError(badUUID))

	assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))

	assert.True(t, pg.IsUnavailableError(shutdown))
	assert.True(t, pg.IsUnavailableError(context.DeadlineExceeded))
	assert.False(t, pg.IsUnavailableError(check))
	assert.False(t, pg.IsUnavailableError(errors.New("plain")))
	assert.False(t, pg.IsUnavailableError(nil))
	assert.Empty(t, pg.ConstraintName(errors.New("plain")))
}

func TestConnect_EmptyConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

func TestMigrate_RequiresSource(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(context.Background(), nil, nil, "", pg.Config{}, nil)
	assert.ErrorIs(t, err, pg.ErrMigrationPathNotProvided)
}
