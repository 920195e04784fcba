// Package repository provides data access layer implementations for the forum.
package repository

import (
	"forumcore/internal/database"

	"gorm.io/gorm"
)

// readDB routes listing queries to the read replica when one is connected.
// Writes and anything inside a transaction stay on primary.
func readDB(primary *gorm.DB) *gorm.DB {
	return database.ReaderOr(primary)
}
