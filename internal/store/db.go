// Package store is the bun backed persistence layer. Every query method lives on Queries,
// which is shared by DB (autocommit) and Tx (one unit of work).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"train-station/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict covers unique violations and deletes blocked by dependent rows.
	ErrConflict = errors.New("conflicting record")
)

type Queries struct {
	db bun.IDB
}

type DB struct {
	Bun *bun.DB
	Queries
}

// Tx is a single all-or-nothing unit of work handed out by DB.InTx.
type Tx struct {
	Queries
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB, Queries: Queries{db: bunDB}}
}

// InTx runs fn inside one transaction. The transaction commits only if fn returns nil;
// any error, or a panic, rolls back every write made through tx.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &Tx{Queries: Queries{db: btx}})
	})
}

func (d *DB) Close() error {
	return d.Bun.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Bun.PingContext(ctx)
}

// PoolConfig mirrors the connection pool settings from config.DatabaseConfig.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// OpenPostgres opens a lib/pq connection pool and wraps it with the postgres dialect.
func OpenPostgres(dsn string, pool PoolConfig) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(pool.MaxIdleConns)
	}
	sqldb.SetConnMaxLifetime(pool.MaxLifetime)
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// OpenSQLite opens a SQLite database through sqliteshim. Writers are serialised on a
// single connection, so concurrent transactions queue instead of failing with SQLITE_BUSY.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	// SQLite ignores foreign keys unless asked, per connection; there is only one.
	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// schemaModels is ordered so that referenced tables come first.
var schemaModels = []interface{}{
	(*models.TrainType)(nil),
	(*models.Station)(nil),
	(*models.Crew)(nil),
	(*models.Train)(nil),
	(*models.Route)(nil),
	(*models.Journey)(nil),
	(*models.Order)(nil),
	(*models.Ticket)(nil),
}

// CreateSchema builds the tables straight from the bun models. Postgres deployments use
// the SQL migrations instead; this is for SQLite development databases and tests.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, m := range schemaModels {
		q := db.NewCreateTable().Model(m).IfNotExists().WithForeignKeys()
		if _, ok := m.(*models.Ticket); ok {
			q = q.ForeignKey(`("order_id") REFERENCES "orders" ("id") ON DELETE CASCADE`)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*models.Ticket)(nil)).
		Index("tickets_order_id_idx").
		Column("order_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tickets index: %w", err)
	}
	return nil
}

// DropSchema removes every table, dependents first.
func DropSchema(ctx context.Context, db *bun.DB) error {
	for i := len(schemaModels) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(schemaModels[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", schemaModels[i], err)
		}
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// unique_violation, foreign_key_violation
		return pqErr.Code == "23505" || pqErr.Code == "23503"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type reference struct {
	model  interface{}
	column string
}

// deleteByID removes one row unless any of refs still points at it. The row is locked
// before the check, so a dependent insert racing the delete either lands first and blocks
// it or fails on the foreign key.
func (q Queries) deleteByID(ctx context.Context, model interface{}, id int64, refs ...reference) error {
	return q.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		inner := Queries{db: tx}

		var lockedID int64
		err := inner.forUpdate(tx.NewSelect().Model(model).Column("id").Where("id = ?", id)).Scan(ctx, &lockedID)
		if err != nil {
			return translate(err)
		}
		for _, ref := range refs {
			inUse, err := tx.NewSelect().
				Model(ref.model).
				Where("? = ?", bun.Ident(ref.column), id).
				Exists(ctx)
			if err != nil {
				return err
			}
			if inUse {
				return fmt.Errorf("%w: still referenced by %T.%s", ErrConflict, ref.model, ref.column)
			}
		}
		res, err := tx.NewDelete().Model(model).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return translate(err)
		}
		return affected(res)
	})
}

func (q Queries) forUpdate(query *bun.SelectQuery) *bun.SelectQuery {
	if q.db.Dialect().Name() == dialect.PG {
		return query.For("UPDATE")
	}
	return query
}

// forShare adds a FOR SHARE row lock on Postgres. SQLite serialises writers on its
// single connection and has no row locks.
func (q Queries) forShare(query *bun.SelectQuery) *bun.SelectQuery {
	if q.db.Dialect().Name() == dialect.PG {
		return query.For("SHARE")
	}
	return query
}

func (q Queries) exists(ctx context.Context, model interface{}, id int64) (bool, error) {
	return q.db.NewSelect().Model(model).Where("id = ?", id).Exists(ctx)
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
