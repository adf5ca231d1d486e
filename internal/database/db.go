package database

import (
	"time"

	"kl-decors-backend/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection and syncs the schema.
// The store may come up after us, so we retry a few times.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is not configured")
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		logrus.Warnf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.Info("✅ Database connected and schema synced")
	return db, nil
}

// Migrate runs AutoMigrate for every entity. Shared with the tests, which
// point it at an in-memory database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Package{},
		&models.CartItem{},
		&models.PayoutDetails{},
		&models.Order{},
		&models.OrderItem{},
		&models.ContactMessage{},
	)
	return errors.Wrap(err, "auto migrate")
}
