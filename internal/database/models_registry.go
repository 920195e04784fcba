package database

import "forumcore/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.UserProfile{},
		&models.UserProperty{},
		&models.Role{},
		&models.UserRole{},
		&models.Section{},
		&models.Theme{},
		&models.Comment{},
		&models.Like{},
	}
}
