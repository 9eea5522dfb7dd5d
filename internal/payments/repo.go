package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// Repository persists the payment state machine entities. Mutating callers
// bind it to the operation's transaction with WithTx first.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRequest(ctx context.Context, request *models.PaymentRequest) error
	FindRequest(ctx context.Context, id uint64) (*models.PaymentRequest, error)
	SaveRequest(ctx context.Context, request *models.PaymentRequest) error
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.PaymentRequest, error)

	CreateEscrow(ctx context.Context, detail *models.EscrowDetail) error
	FindEscrow(ctx context.Context, paymentID uint64) (*models.EscrowDetail, error)
	SaveEscrow(ctx context.Context, detail *models.EscrowDetail) error

	CreateSchedule(ctx context.Context, schedule *models.RecurringSchedule) error
	FindSchedule(ctx context.Context, id uint64) (*models.RecurringSchedule, error)
	SaveSchedule(ctx context.Context, schedule *models.RecurringSchedule) error
	ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]models.RecurringSchedule, error)

	CreateGroup(ctx context.Context, group *models.PaymentGroup) error
	FindGroup(ctx context.Context, id uint64) (*models.PaymentGroup, error)
	SaveGroup(ctx context.Context, group *models.PaymentGroup) error
	CreateParticipants(ctx context.Context, rows []models.GroupParticipant) error
	FindParticipant(ctx context.Context, groupID uint64, account uuid.UUID) (*models.GroupParticipant, error)
	SaveParticipant(ctx context.Context, participant *models.GroupParticipant) error
	ListParticipants(ctx context.Context, groupID uint64) ([]models.GroupParticipant, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, request *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindRequest(ctx context.Context, id uint64) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repository) SaveRequest(ctx context.Context, request *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// ListExpiredPending returns pending non-escrow requests whose expiry has
// passed. Escrow requests never expire by sweep; their funds stay locked
// until release or cancellation.
func (r *repository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.PaymentRequest, error) {
	var rows []models.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND mode <> ? AND expires_at <= ?",
			enums.PaymentStatusPending, enums.PaymentModeEscrow, cutoff).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateEscrow(ctx context.Context, detail *models.EscrowDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *repository) FindEscrow(ctx context.Context, paymentID uint64) (*models.EscrowDetail, error) {
	var detail models.EscrowDetail
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}

func (r *repository) SaveEscrow(ctx context.Context, detail *models.EscrowDetail) error {
	return r.db.WithContext(ctx).Save(detail).Error
}

func (r *repository) CreateSchedule(ctx context.Context, schedule *models.RecurringSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *repository) FindSchedule(ctx context.Context, id uint64) (*models.RecurringSchedule, error) {
	var schedule models.RecurringSchedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) SaveSchedule(ctx context.Context, schedule *models.RecurringSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *repository) ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]models.RecurringSchedule, error) {
	var rows []models.RecurringSchedule
	err := r.db.WithContext(ctx).
		Where("active = ? AND next_payment_at <= ?", true, now).
		Order("next_payment_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateGroup(ctx context.Context, group *models.PaymentGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repository) FindGroup(ctx context.Context, id uint64) (*models.PaymentGroup, error) {
	var group models.PaymentGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) SaveGroup(ctx context.Context, group *models.PaymentGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *repository) CreateParticipants(ctx context.Context, rows []models.GroupParticipant) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindParticipant(ctx context.Context, groupID uint64, account uuid.UUID) (*models.GroupParticipant, error) {
	var participant models.GroupParticipant
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND account_id = ?", groupID, account).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

func (r *repository) SaveParticipant(ctx context.Context, participant *models.GroupParticipant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *repository) ListParticipants(ctx context.Context, groupID uint64) ([]models.GroupParticipant, error) {
	var rows []models.GroupParticipant
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("account_id ASC").
		Find(&rows).Error
	return rows, err
}
