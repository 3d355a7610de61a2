package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/seafaring-go/internal/infrastructure/database"
)

// NewTestDB opens a private in-memory SQLite database with the snapshot and
// event tables migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Logf("closing test database: %v", err)
		}
	})
	return db
}
