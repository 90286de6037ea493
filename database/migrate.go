package database

import (
	"fmt"

	"gorm.io/gorm"

	"gobarber/models"
)

// slotIndex keeps at most one active appointment per provider slot. Both
// postgres and sqlite accept partial indexes with this syntax.
const slotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_provider_slot
	ON appointments (provider_id, date) WHERE canceled_at IS NULL`

// Migrate brings the relational schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.File{}, &models.User{}, &models.Appointment{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(slotIndex).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}
	return nil
}
