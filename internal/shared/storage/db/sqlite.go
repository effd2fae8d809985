package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // register sqlite as database/sql driver
)

var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

// OpenSQLite opens the embedded database at path, creating parent
// directories. The pool is limited to one connection so writers serialize.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, eris.New("db: sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "db: mkdir %s", dir)
		}
	}

	db, err := openDB("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, eris.Wrap(err, "db: open sqlite")
	}
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db, 0); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	params := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}
