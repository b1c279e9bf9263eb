package core

import (
	"database/sql"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

type SQLiteDBOption struct {
	// Mode can be ro | rw | rwc | memory
	Mode string
	// Cache can be shared | private
	Cache string
	// JournalMode can be DELETE | TRUNCATE | PERSIST | MEMORY | WAL | OFF
	JournalMode string
}

func (config *SQLiteDBOption) values() url.Values {
	v := url.Values{}
	if config == nil {
		return v
	}
	if config.Mode != "" {
		v.Set("mode", config.Mode)
	}
	if config.Cache != "" {
		v.Set("cache", config.Cache)
	}
	if config.JournalMode != "" {
		v.Set("journal_mode", config.JournalMode)
	}
	return v
}

type SQLiteDB struct {
	*sql.DB
	config       *SQLiteDBOption
	file         string
	migrationDir string
}

func NewSQLiteDB(file, migrationDir string, config *SQLiteDBOption) (*SQLiteDB, error) {
	db := &SQLiteDB{config: config, migrationDir: migrationDir, file: file}

	dsn := "file:" + db.file
	if query := config.values().Encode(); query != "" {
		dsn += "?" + query
	}

	d, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.DB = d
	return db, nil
}

func (db *SQLiteDB) Migrate() error {
	migrationfs := os.DirFS(db.migrationDir)
	goose.SetBaseFS(migrationfs)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	if err := goose.Up(db.DB, "."); err != nil {
		return err
	}
	return nil
}
