package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-upload/internal/core/port"
)

// sqlUnitOfWork hands out repositories bound to the database, or to the
// transaction of an Execute call
type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) UploadRepo() port.UploadRepository {
	return NewSQLUploadRepository(u.querier())
}

func (u *sqlUnitOfWork) UploadFileRepo() port.UploadFileRepository {
	return NewSQLUploadFileRepository(u.querier())
}

// Execute runs fn in a transaction, committed only when fn succeeds. A panic
// in fn rolls back and is re-raised.
func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) (err error) {
	if u.tx != nil {
		return fn(u)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&sqlUnitOfWork{db: u.db, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
