package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// transient SQLSTATE codes outside class 08.
var transientPgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57014": true, // query_canceled
	"57P01": true, // admin_shutdown
}

// classifyError maps a raw store error onto the application taxonomy.
// AppErrors pass through untouched; unknown failures become internal errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	classified := classify(err)
	observability.StoreErrors.WithLabelValues(classified.Code).Inc()
	return classified
}

func classify(err error) *models.AppError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AppError{Code: models.CodeNotFound, Message: "Record not found", Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return models.NewConstraintViolationError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return models.NewTransientError(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return models.NewConstraintViolationError(err)
		case strings.HasPrefix(pgErr.Code, "08"), transientPgCodes[pgErr.Code]:
			return models.NewTransientError(err)
		}
		return models.NewInternalError(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return models.NewTransientError(err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return models.NewConstraintViolationError(err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return models.NewTransientError(err)
		}
	}

	return models.NewInternalError(err)
}
