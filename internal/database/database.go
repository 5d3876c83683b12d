package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"astrocat/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite:", dsn)

	// modernc driver keeps local/dev builds cgo-free
	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the full catalog schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.CelestialObject{},
		&domain.Gear{},
		&domain.Location{},
		&domain.ObservingSession{},
		&domain.Image{},
		&domain.ImageObject{},
		&domain.ImageGear{},
		&domain.ImageSession{},
		&domain.ProcessingLog{},
		&domain.FrameSet{},
		&domain.RawFrame{},
		&domain.FrameSummary{},
	)
}
