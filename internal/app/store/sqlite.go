package store

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/database"
)

const sqliteSchema = `
create table if not exists tokens (
	token      text primary key,
	long_value text not null
);
create table if not exists long_values (
	long_value text primary key,
	token      text not null unique
);`

// SQLiteStore хранит индексы в двух таблицах SQLite. Пул ограничен одним
// соединением, поэтому транзакции выполняются строго по очереди.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLiteStore открывает базу по dsn и создаёт таблицы, если их нет.
func NewSQLiteStore(dsn string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := database.NewDB("sqlite3", dsn, database.SQLitePool, config.DBTimeout, logger)
	if err != nil {
		return nil, xerrors.Errorf("could not open SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, xerrors.Errorf("could not create SQLite schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(tx bimap.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("error starting SQLite transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return xerrors.Errorf("error committing SQLite transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) View(ctx context.Context, fn func(tx bimap.ReadTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("error starting SQLite transaction: %w", err)
	}
	defer tx.Rollback()
	return fn(&sqliteTx{tx: tx})
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) TokenOf(ctx context.Context, longValue string) (token string, ok bool, err error) {
	err = t.tx.QueryRowContext(ctx, "select token from long_values where long_value = ?", longValue).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, xerrors.Errorf("error resolving long value to token: %w", err)
	}
	return token, true, nil
}

func (t *sqliteTx) LongOf(ctx context.Context, token string) (longValue string, ok bool, err error) {
	err = t.tx.QueryRowContext(ctx, "select long_value from tokens where token = ?", token).Scan(&longValue)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, xerrors.Errorf("error resolving token %s to long value: %w", token, err)
	}
	return longValue, true, nil
}

func (t *sqliteTx) ForEachToken(ctx context.Context, fn func(token, longValue string) error) error {
	return t.forEach(ctx, "select token, long_value from tokens", fn)
}

func (t *sqliteTx) ForEachLong(ctx context.Context, fn func(longValue, token string) error) error {
	return t.forEach(ctx, "select long_value, token from long_values", fn)
}

// forEach сначала вычитывает все строки: на единственном соединении
// нельзя выполнять запросы, пока открыт курсор.
func (t *sqliteTx) forEach(ctx context.Context, query string, fn func(a, b string) error) error {
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return xerrors.Errorf("error listing SQLite index: %w", err)
	}
	var pairs [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			rows.Close()
			return xerrors.Errorf("error scanning SQLite index: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return xerrors.Errorf("error listing SQLite index: %w", err)
	}
	rows.Close()

	for _, p := range pairs {
		if err := fn(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTx) InsertTokenIfAbsent(ctx context.Context, token, longValue string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, "insert or ignore into tokens (token, long_value) values (?, ?)", token, longValue)
	if err != nil {
		return false, xerrors.Errorf("error adding token to database: %w", err)
	}
	return affectedOne(res)
}

func (t *sqliteTx) InsertLongIfAbsent(ctx context.Context, longValue, token string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, "insert or ignore into long_values (long_value, token) values (?, ?)", longValue, token)
	if err != nil {
		return false, xerrors.Errorf("error adding long value to database: %w", err)
	}
	return affectedOne(res)
}

func (t *sqliteTx) DeleteToken(ctx context.Context, token string) error {
	if _, err := t.tx.ExecContext(ctx, "delete from tokens where token = ?", token); err != nil {
		return xerrors.Errorf("error deleting token %s: %w", token, err)
	}
	return nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, xerrors.Errorf("error reading affected rows: %w", err)
	}
	return n == 1, nil
}
