package cookiestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
create table if not exists cookie_blob (
	key text primary key,
	blob blob not null,
	updated_at integer not null
);
`

// SQLStore keeps one blob per key in a sqlite compatible database.
type SQLStore struct {
	db  *sql.DB
	key string
}

// NewSQLStore creates the schema if it does not exist yet.
func NewSQLStore(ctx context.Context, db *sql.DB, key string) (SQLStore, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLStore{}, fmt.Errorf("create cookie_blob table: %w", err)
	}
	return SQLStore{db: db, key: key}, nil
}

func (s SQLStore) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(
		ctx,
		"select blob from cookie_blob where key = ?",
		s.key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cookie blob: %w", err)
	}
	return blob, nil
}

func (s SQLStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into cookie_blob (key, blob, updated_at) values (?, ?, ?)
		on conflict (key) do update set blob = excluded.blob, updated_at = excluded.updated_at`,
		s.key, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert cookie blob: %w", err)
	}
	return nil
}

// Config selects a Store. LibsqlUrl wins over SqliteFile, which wins over Path.
type Config struct {
	Path       string `json:"path"`
	SqliteFile string `json:"sqlite_file"`
	LibsqlUrl  string `json:"libsql_url"`
	AuthToken  string `json:"auth_token"`
	// Key identifies the blob inside a shared database, defaults to "default".
	Key string `json:"key"`
}

func (c Config) openDB() (*sql.DB, error) {
	if c.LibsqlUrl != "" {
		values := url.Values{}
		if c.AuthToken != "" {
			values.Add("authToken", c.AuthToken)
		}
		link := c.LibsqlUrl
		if len(values) > 0 {
			link += "?" + values.Encode()
		}
		return sql.Open("libsql", link)
	}
	return sql.Open("sqlite", c.SqliteFile)
}

// Open returns the Store described by the config, the returned close function
// releases any database handle and is never nil.
func Open(ctx context.Context, c Config) (Store, func() error, error) {
	if c.LibsqlUrl == "" && c.SqliteFile == "" {
		return NewFileStore(c.Path), func() error { return nil }, nil
	}

	db, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}
	key := c.Key
	if key == "" {
		key = "default"
	}
	store, err := NewSQLStore(ctx, db, key)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}
