package repository

import (
	"errors"

	"gorm.io/gorm"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// translateErr maps driver-specific constraint violations that gorm's
// TranslateError misses onto gorm's own sentinels. The gorm sqlite driver
// only recognizes mattn's error type, so unique-index violations from the
// cgo-free modernc driver would otherwise pass through untranslated.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return gorm.ErrDuplicatedKey
		}
	}
	return err
}
