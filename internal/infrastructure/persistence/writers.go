package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/unifyd/backend/internal/domain/unified"
)

// isDuplicateKey reports whether the error is a unique-constraint violation.
// The string checks cover drivers that predate gorm's error translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateInsertRace maps a lost insert race onto the conflict sentinel so
// the ingestion layer can retry onto the update path.
func translateInsertRace(err error) error {
	if err != nil && isDuplicateKey(err) {
		return unified.ErrPersistenceConflict
	}
	return err
}
