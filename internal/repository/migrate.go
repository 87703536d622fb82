package repository

import "gorm.io/gorm"

// Migrate creates or updates the schema for every table this package owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&roleModel{},
		&userModel{},
		&revokedTokenModel{},
		&auditEntryModel{},
	)
}
