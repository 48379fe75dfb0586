// Package backend picks the storage.Provider implementation for a target.
package backend

import (
	"path/filepath"
	"strings"

	"github.com/julianstephens/quitlog/internal/storage"
	"github.com/julianstephens/quitlog/internal/storage/postgres"
	"github.com/julianstephens/quitlog/internal/storage/sqlite"
)

type Kind string

const (
	SQLite   Kind = "sqlite"
	Postgres Kind = "postgres"
	JSON     Kind = "json"
)

// Detect classifies target: PostgreSQL URLs and DSNs, *.json files, and
// everything else as a SQLite path.
func Detect(target string) Kind {
	switch {
	case postgres.IsConnString(target):
		return Postgres
	case strings.EqualFold(filepath.Ext(target), ".json"):
		return JSON
	default:
		return SQLite
	}
}

// New builds an unopened provider for target. Connection strings carrying
// a password are rejected.
func New(target string) (storage.Provider, Kind, error) {
	kind := Detect(target)
	switch kind {
	case Postgres:
		if _, err := postgres.ValidateConnString(target); err != nil {
			return nil, kind, err
		}
		return postgres.New(target), kind, nil
	case JSON:
		return storage.NewJSONStore(target), kind, nil
	default:
		return sqlite.NewStore(target), kind, nil
	}
}
