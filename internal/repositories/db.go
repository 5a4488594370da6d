package repositories

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/models"
)

// Open connects to the database for driver "postgres" or "mysql".
func Open(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database URL is empty")
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "", "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.OtaSession{},
		&models.OtaEvent{},
		&models.SlotHistory{},
		&models.Product{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logs.Logger.Info("database schema migrated")
	return nil
}

// ConnectDatabase opens and migrates the database.
func ConnectDatabase(driver, dsn string) (*gorm.DB, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logs.Logger.WithField("driver", db.Dialector.Name()).Info("successfully connected to database")
	return db, nil
}

// Repos bundles the repositories over one database.
type Repos struct {
	Users    *UserRepo
	Devices  *DeviceRepo
	Sessions *SessionRepo
	Products *ProductRepo
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Users:    NewUserRepo(db),
		Devices:  NewDeviceRepo(db),
		Sessions: NewSessionRepo(db),
		Products: NewProductRepo(db),
	}
}

// dbError maps gorm errors into API errors.
func dbError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NewNotFoundError(what+" not found", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NewConflictError(what+" already exists", err)
	}
	return apperr.NewDatabaseError("Database query failed", err)
}
