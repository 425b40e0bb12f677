package store

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
	"github.com/aseptimu/bijective-shortener/internal/app/config"
)

// Database хранит индексы в PostgreSQL. Прямой индекс адресуется
// sha256 от длинного значения, чтобы первичный ключ не зависел от длины URL.
type Database struct {
	dbpool *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewDB(ctx context.Context, ps string, logger *zap.SugaredLogger) (*Database, error) {
	dbpool, err := pgxpool.New(ctx, ps)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Database{dbpool, logger}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()
	return db.dbpool.Ping(ctx)
}

func (db *Database) Close() error {
	db.dbpool.Close()
	return nil
}

// Update выполняет fn в транзакции READ COMMITTED. Конкурентная вставка того же
// значения дождётся коммита соперника и получит конфликт по уникальному ключу.
func (db *Database) Update(ctx context.Context, fn func(tx bimap.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	tx, err := db.dbpool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		db.logger.Debugw("Transaction rolled back", "err", err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (db *Database) View(ctx context.Context, fn func(tx bimap.ReadTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	tx, err := db.dbpool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	return fn(&pgTx{tx: tx})
}

func digest(longValue string) []byte {
	sum := sha256.Sum256([]byte(longValue))
	return sum[:]
}

type pgTx struct {
	tx pgx.Tx
}

const TokenOfQuery = "SELECT token FROM long_values WHERE long_digest = $1 AND long_value = $2"

func (t *pgTx) TokenOf(ctx context.Context, longValue string) (string, bool, error) {
	var token string
	err := t.tx.QueryRow(ctx, TokenOfQuery, digest(longValue), longValue).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query token: %w", err)
	}
	return token, true, nil
}

const LongOfQuery = "SELECT long_value FROM tokens WHERE token = $1"

func (t *pgTx) LongOf(ctx context.Context, token string) (string, bool, error) {
	var longValue string
	err := t.tx.QueryRow(ctx, LongOfQuery, token).Scan(&longValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query long value: %w", err)
	}
	return longValue, true, nil
}

func (t *pgTx) ForEachToken(ctx context.Context, fn func(token, longValue string) error) error {
	return t.forEach(ctx, "SELECT token, long_value FROM tokens", fn)
}

func (t *pgTx) ForEachLong(ctx context.Context, fn func(longValue, token string) error) error {
	return t.forEach(ctx, "SELECT long_value, token FROM long_values", fn)
}

// forEach собирает строки до вызова fn: внутри одной транзакции pgx
// не позволяет выполнять запросы при открытом курсоре.
func (t *pgTx) forEach(ctx context.Context, query string, fn func(a, b string) error) error {
	rows, err := t.tx.Query(ctx, query)
	if err != nil {
		return err
	}
	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]string, error) {
		var p [2]string
		err := row.Scan(&p[0], &p[1])
		return p, err
	})
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := fn(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

const InsertTokenQuery = `INSERT INTO tokens (token, long_value)
         VALUES ($1, $2)
         ON CONFLICT (token) DO NOTHING`

func (t *pgTx) InsertTokenIfAbsent(ctx context.Context, token, longValue string) (bool, error) {
	tag, err := t.tx.Exec(ctx, InsertTokenQuery, token, longValue)
	if err != nil {
		return false, fmt.Errorf("insert token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const InsertLongQuery = `INSERT INTO long_values (long_digest, long_value, token)
         VALUES ($1, $2, $3)
         ON CONFLICT (long_digest) DO NOTHING`

func (t *pgTx) InsertLongIfAbsent(ctx context.Context, longValue, token string) (bool, error) {
	tag, err := t.tx.Exec(ctx, InsertLongQuery, digest(longValue), longValue, token)
	if err != nil {
		return false, fmt.Errorf("insert long value: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const DeleteTokenQuery = "DELETE FROM tokens WHERE token = $1"

func (t *pgTx) DeleteToken(ctx context.Context, token string) error {
	if _, err := t.tx.Exec(ctx, DeleteTokenQuery, token); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
