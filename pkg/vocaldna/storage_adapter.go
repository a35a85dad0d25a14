//go:build !js && !wasm
// +build !js,!wasm

package vocaldna

import (
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/storage"
)

var _ Storage = (*storage.DBClient)(nil)

// ErrNotFound is returned by label lookups for an unknown id.
var ErrNotFound = storage.ErrNotFound

// NewSQLiteStorage opens (and migrates) the SQLite label store at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
