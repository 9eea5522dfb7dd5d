package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/internal/fees"
	"github.com/angelmondragon/payflow-backend/internal/ledger"
	"github.com/angelmondragon/payflow-backend/internal/platform"
	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/internal/sequence"
	"github.com/angelmondragon/payflow-backend/internal/treasury"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/metrics"
	"github.com/angelmondragon/payflow-backend/pkg/outbox"
	"github.com/angelmondragon/payflow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Receipt is returned by every settling operation.
type Receipt struct {
	TransactionID uint64 `json:"transaction_id"`
	NetCents      int64  `json:"net_cents"`
	FeeCents      int64  `json:"fee_cents"`
}

// ScheduleReceipt extends a Receipt with the schedule cursor after one
// installment settles.
type ScheduleReceipt struct {
	Receipt
	CompletedInstallments int  `json:"completed_installments"`
	Active                bool `json:"active"`
}

// GroupReceipt extends a Receipt with the group completion flag.
type GroupReceipt struct {
	Receipt
	GroupCompleted bool `json:"group_completed"`
}

// Service is the payment state machine: every mutating operation runs in a
// single transaction, checks the pause flag and amount bounds first, and
// commits the transfer together with all bookkeeping or not at all.
type Service interface {
	CreateRequest(ctx context.Context, actor uuid.UUID, input CreateRequestInput) (*models.PaymentRequest, error)
	CompleteRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*Receipt, error)
	CancelRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*models.PaymentRequest, error)
	PayInstant(ctx context.Context, actor uuid.UUID, input InstantInput) (*Receipt, error)

	CreateEscrow(ctx context.Context, actor uuid.UUID, input CreateEscrowInput) (*models.PaymentRequest, error)
	ReleaseEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64) (*Receipt, error)
	DisputeEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64, reason string) error

	SetupSchedule(ctx context.Context, actor uuid.UUID, input ScheduleInput) (*models.RecurringSchedule, error)
	ExecuteSchedule(ctx context.Context, actor uuid.UUID, scheduleID uint64) (*ScheduleReceipt, error)

	CreateGroup(ctx context.Context, actor uuid.UUID, input GroupInput) (*models.PaymentGroup, error)
	PayGroupShare(ctx context.Context, actor uuid.UUID, groupID uint64) (*GroupReceipt, error)

	ExpireStaleRequests(ctx context.Context, limit int) (int, error)
	DueSchedules(ctx context.Context, limit int) ([]models.RecurringSchedule, error)

	GetRequest(ctx context.Context, id uint64) (*models.PaymentRequest, error)
	GetEscrow(ctx context.Context, paymentID uint64) (*models.EscrowDetail, error)
	GetSchedule(ctx context.Context, id uint64) (*models.RecurringSchedule, error)
	GetGroup(ctx context.Context, id uint64) (*models.PaymentGroup, []models.GroupParticipant, error)
}

// ServiceParams groups the collaborators of the payment engine.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Platform  platform.Service
	Profiles  profiles.Service
	Ledger    ledger.Service
	Sequences sequence.Allocator
	Treasury  treasury.Transferrer
	Outbox    outboxPublisher
	Metrics   *metrics.PaymentMetrics
	Clock     func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	platform  platform.Service
	profiles  profiles.Service
	ledger    ledger.Service
	sequences sequence.Allocator
	treasury  treasury.Transferrer
	outbox    outboxPublisher
	metrics   *metrics.PaymentMetrics
	clock     func() time.Time
}

// NewService builds the payment engine with the required dependencies.
// Metrics are optional; a nil recorder is a no-op.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Platform == nil {
		return nil, fmt.Errorf("platform service required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles service required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Sequences == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if params.Treasury == nil {
		return nil, fmt.Errorf("treasury transferrer required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		platform:  params.Platform,
		profiles:  params.Profiles,
		ledger:    params.Ledger,
		sequences: params.Sequences,
		treasury:  params.Treasury,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		clock:     clock,
	}, nil
}

// guard loads the settings inside the operation's transaction and rejects
// when the platform is paused. Every mutating operation calls it first.
func (s *service) guard(ctx context.Context, tx *gorm.DB) (*models.PlatformSettings, error) {
	settings, err := s.platform.Load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if settings.Paused {
		return nil, pkgerrors.New(pkgerrors.CodePaused, "platform is paused")
	}
	return settings, nil
}

func requireActor(actor uuid.UUID) error {
	if actor == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	return nil
}

func checkRecipient(sender, recipient uuid.UUID) error {
	if recipient == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "recipient is required")
	}
	if recipient == sender {
		return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "sender and recipient must differ")
	}
	return nil
}

// transferPlan drives one settlement. Source is the account debited, which
// is the sender for direct modes and platform custody for escrow release.
type transferPlan struct {
	source      uuid.UUID
	sender      uuid.UUID
	recipient   uuid.UUID
	amountCents int64
	mode        enums.PaymentMode
}

// settle moves net to the recipient and fee to the platform, then records
// the audit row and both reputation updates. Runs entirely inside tx, so a
// failed transfer leaves no bookkeeping behind.
func (s *service) settle(ctx context.Context, tx *gorm.DB, settings *models.PlatformSettings, plan transferPlan) (*Receipt, error) {
	breakdown := fees.Split(plan.amountCents, settings.FeeRateBps)
	now := s.clock()

	prof := s.profiles.WithTx(tx)
	if _, err := prof.Ensure(ctx, plan.sender, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure sender profile")
	}
	if _, err := prof.Ensure(ctx, plan.recipient, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure recipient profile")
	}

	if err := s.treasury.Transfer(tx, plan.source, plan.recipient, breakdown.NetCents); err != nil {
		return nil, err
	}
	if breakdown.FeeCents > 0 {
		if err := s.treasury.Transfer(tx, plan.source, settings.FeeAccount, breakdown.FeeCents); err != nil {
			return nil, err
		}
	}

	record, err := s.ledger.Append(ctx, tx, ledger.AppendInput{
		Sender:    plan.sender,
		Recipient: plan.recipient,
		NetCents:  breakdown.NetCents,
		FeeCents:  breakdown.FeeCents,
		Mode:      plan.mode,
		SettledAt: now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit record")
	}

	if err := prof.RecordSettlement(ctx, plan.sender, plan.amountCents, enums.SettlementRoleSender); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sender settlement")
	}
	if err := prof.RecordSettlement(ctx, plan.recipient, plan.amountCents, enums.SettlementRoleRecipient); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record recipient settlement")
	}

	s.metrics.ObserveSettlement(plan.mode.String(), breakdown.NetCents, breakdown.FeeCents)

	return &Receipt{
		TransactionID: record.ID,
		NetCents:      breakdown.NetCents,
		FeeCents:      breakdown.FeeCents,
	}, nil
}

func (s *service) settledEvent(actor uuid.UUID, receipt *Receipt, plan transferPlan, paymentID uint64) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventPaymentSettled,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   receipt.TransactionID,
		Version:       1,
		Actor:         &outbox.ActorRef{AccountID: actor},
		Data: payloads.PaymentSettledEvent{
			TransactionID: receipt.TransactionID,
			PaymentID:     paymentID,
			Sender:        plan.sender,
			Recipient:     plan.recipient,
			NetCents:      receipt.NetCents,
			FeeCents:      receipt.FeeCents,
			Mode:          plan.mode,
			SettledAt:     s.clock(),
		},
	}
}
