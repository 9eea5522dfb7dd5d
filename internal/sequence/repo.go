package sequence

import (
	"fmt"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Allocator hands out unique ascending identifiers from durable counters.
// Next must be called inside the transaction of the operation consuming the
// id so an aborted operation never burns a gap into the audit trail.
type Allocator interface {
	Next(tx *gorm.DB, name string) (uint64, error)
}

type allocator struct{}

// NewAllocator returns the sequence allocator.
func NewAllocator() Allocator {
	return allocator{}
}

func (allocator) Next(tx *gorm.DB, name string) (uint64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}

	res := tx.Model(&models.Sequence{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("sequence %q not seeded", name)
	}

	var seq models.Sequence
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// Seed inserts the named counters at zero when absent. Used by tests and the
// sqlite dev path; the postgres migrations seed them up front.
func Seed(db *gorm.DB, names ...string) error {
	for _, name := range names {
		var existing models.Sequence
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&models.Sequence{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
