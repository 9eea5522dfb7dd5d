package platform

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
)

// Repository manages the singleton platform settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Create(ctx context.Context, settings *models.PlatformSettings) error
	Save(ctx context.Context, settings *models.PlatformSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.WithContext(ctx).Where("id = ?", models.PlatformSettingsID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *models.PlatformSettings) error {
	settings.ID = models.PlatformSettingsID
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Save(ctx context.Context, settings *models.PlatformSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
