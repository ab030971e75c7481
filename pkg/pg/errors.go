package pg

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")
)

// IsNotFoundError detects pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsCheckViolationError detects CHECK constraint violations (SQLSTATE 23514).
func IsCheckViolationError(err error) bool {
	return pgErrorCode(err) == "23514"
}

// IsNotNullViolationError detects NOT NULL violations (SQLSTATE 23502).
func IsNotNullViolationError(err error) bool {
	return pgErrorCode(err) == "23502"
}

// IsStringTooLongError detects values exceeding a column's length (SQLSTATE 22001).
func IsStringTooLongError(err error) bool {
	return pgErrorCode(err) == "22001"
}

// IsInvalidTextError detects invalid input values such as a malformed uuid (SQLSTATE 22P02).
func IsInvalidTextError(err error) bool {
	return pgErrorCode(err) == "22P02"
}

// IsUnavailableError reports connection-level failures: the server could not
// be reached, went away, or the operation timed out.
func IsUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	code := pgErrorCode(err)
	// class 08 connection exception, class 57 operator intervention (shutdown)
	return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57")
}

// ConstraintName returns the violated constraint, if the error carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
