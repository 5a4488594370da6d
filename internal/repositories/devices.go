package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/otadash/internal/models"
)

type DeviceRepo struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// List returns all devices ordered by name.
func (r *DeviceRepo) List(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := r.db.WithContext(ctx).Order("name asc").Find(&devices).Error; err != nil {
		return nil, dbError("Devices", err)
	}
	return devices, nil
}

func (r *DeviceRepo) Get(ctx context.Context, name string) (*models.Device, error) {
	var d models.Device
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, dbError("Device", err)
	}
	return &d, nil
}

// Upsert creates the device or refreshes its last-seen time.
func (r *DeviceRepo) Upsert(ctx context.Context, d *models.Device) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen"}),
	}).Create(d).Error
	if err != nil {
		return dbError("Device", err)
	}
	return nil
}
