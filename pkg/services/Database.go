package services

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

//go:embed sql-migrations
var sqlMigrationsFs embed.FS

var registerBinds sync.Once

func ConnectDatabase(dsn string) (*sqlz.DB, error) {
	var (
		err error
		db  *sqlz.DB
	)

	registerBinds.Do(func() {
		binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	})

	if db, err = sqlz.Connect("sqlite", dsn); err != nil {
		return nil, fmt.Errorf("error connecting to database %s: %w", dsn, err)
	}

	return db, nil
}

/*
MigrateDatabase runs the embedded SQL migration scripts in name order. Scripts
are written to be re-runnable; errors from re-applying an already-applied
script are ignored.
*/
func MigrateDatabase(db *sqlz.DB) error {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		return fmt.Errorf("error reading migration scripts: %w", err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				return fmt.Errorf("error reading migration script %s: %w", d.Name(), err)
			}

			if err = runSqlScript(db, b); err != nil {
				if !isIgnorableError(err) {
					return fmt.Errorf("error running migration script %s: %w", d.Name(), err)
				}
			}
		}
	}

	return nil
}

func runSqlScript(db *sqlz.DB, script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	if strings.Contains(err.Error(), "already exists") {
		return true
	}

	return false
}
