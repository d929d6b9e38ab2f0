package database

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Each migration carries its own snapshot of the record shapes so the chain
// stays valid as the live models in package garden move on. Steps only add
// columns, tables and indexes; existing rows are never rewritten, so fields
// introduced later read back as NULL on old records.

// Migrate brings the store up to the latest schema version, applying only
// the steps not yet recorded.
func Migrate(db *gorm.DB) error {
	return migrator(db).Migrate()
}

// MigrateTo stops after the named version. Used by tests to build stores
// frozen at an old schema.
func MigrateTo(db *gorm.DB, versionID string) error {
	return migrator(db).MigrateTo(versionID)
}

func migrator(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations())
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		// v1: base plants/events/settings collections
		{
			ID: "v1",
			Migrate: func(tx *gorm.DB) error {
				type plant struct {
					ID    uint     `gorm:"primarykey"`
					Name  string   `gorm:"index"`
					Type  string   `gorm:"index"`
					Row   *int     `gorm:"index"`
					X     *float64 `gorm:"index"`
					Y     *float64 `gorm:"index"`
					Notes *string
				}
				type event struct {
					ID         uint   `gorm:"primarykey"`
					PlantID    uint   `gorm:"index"`
					EventType  string `gorm:"index"`
					Date       string `gorm:"index"`
					Notes      *string
					ModifiedAt time.Time `gorm:"index"`
				}
				type setting struct {
					Key   string `gorm:"primaryKey"`
					Value datatypes.JSON
				}
				return tx.AutoMigrate(&plant{}, &event{}, &setting{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("plants", "events", "settings")
			},
		},
		// v2: plant display emoji
		{
			ID: "v2",
			Migrate: func(tx *gorm.DB) error {
				type plant struct {
					Emoji *string `gorm:"index"`
				}
				return tx.AutoMigrate(&plant{})
			},
			Rollback: func(tx *gorm.DB) error {
				type plant struct {
					Emoji *string
				}
				return tx.Migrator().DropColumn(&plant{}, "Emoji")
			},
		},
		// v3: bed membership for plants
		{
			ID: "v3",
			Migrate: func(tx *gorm.DB) error {
				type plant struct {
					BedID *uint `gorm:"index"`
				}
				return tx.AutoMigrate(&plant{})
			},
			Rollback: func(tx *gorm.DB) error {
				type plant struct {
					BedID *uint
				}
				return tx.Migrator().DropColumn(&plant{}, "BedID")
			},
		},
		// v4: photo attachments
		{
			ID: "v4",
			Migrate: func(tx *gorm.DB) error {
				type photo struct {
					ID          uint   `gorm:"primarykey"`
					PlantID     uint   `gorm:"index"`
					Data        []byte `gorm:"type:blob"`
					ContentType string
					IsMain      bool `gorm:"index"`
					CreatedAt   time.Time
				}
				return tx.AutoMigrate(&photo{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("photos")
			},
		},
		// v5: composite index for last-event-of-type lookups
		{
			ID: "v5",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(
					"CREATE INDEX IF NOT EXISTS idx_events_plant_event ON events(plant_id, event_type)",
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_events_plant_event").Error
			},
		},
	}
}
