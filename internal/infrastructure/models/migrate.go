package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Participant{},
		&Team{},
		&TeamMember{},
		&TeamInvite{},
		&TeamJoinRequest{},
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
