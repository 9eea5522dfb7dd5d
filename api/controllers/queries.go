package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/api/responses"
	"github.com/angelmondragon/payflow-backend/api/validators"
	"github.com/angelmondragon/payflow-backend/internal/ledger"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/pagination"
)

// Lookups return null data on a miss, never an error.

// PaymentRequestGet returns one payment request, escrow detail attached when present.
func PaymentRequestGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		paymentID, err := pathID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetRequest(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if request == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		payload := map[string]any{"request": paymentRequestResponseFromModel(request)}
		if request.Mode == enums.PaymentModeEscrow {
			detail, err := svc.GetEscrow(r.Context(), paymentID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			payload["escrow"] = escrowResponseFromModel(detail)
		}
		responses.WriteSuccess(w, payload)
	}
}

// ScheduleGet returns one recurring schedule.
func ScheduleGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		scheduleID, err := pathID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.GetSchedule(r.Context(), scheduleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if schedule == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, scheduleResponseFromModel(schedule))
	}
}

// GroupGet returns one split group with its participant rows.
func GroupGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		groupID, err := pathID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, participants, err := svc.GetGroup(r.Context(), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if group == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, groupResponseFromModel(group, participants))
	}
}

// TransactionGet returns one settled transaction record.
func TransactionGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		txID, err := pathID(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), txID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if record == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, transactionResponseFromModel(record))
	}
}

// TransactionList returns the most recent transactions touching an account.
func TransactionList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		rawAccount := r.URL.Query().Get("account")
		account, err := uuid.Parse(rawAccount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		var beforeID uint64
		if cursor != nil {
			beforeID = cursor.ID
		}

		records, err := svc.ListByAccount(r.Context(), account, pagination.LimitWithBuffer(limit), beforeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		nextCursor := ""
		if len(records) > limit {
			records = records[:limit]
			nextCursor = pagination.EncodeCursor(pagination.Cursor{ID: records[len(records)-1].ID})
		}

		out := make([]*transactionResponse, 0, len(records))
		for i := range records {
			out = append(out, transactionResponseFromModel(&records[i]))
		}
		responses.WriteSuccess(w, transactionListResponse{
			Transactions: out,
			NextCursor:   nextCursor,
		})
	}
}

type transactionListResponse struct {
	Transactions []*transactionResponse `json:"transactions"`
	NextCursor   string                 `json:"nextCursor,omitempty"`
}

// ProfileGet returns the aggregate bookkeeping for an account.
func ProfileGet(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		account, err := uuid.Parse(chi.URLParam(r, "accountId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account"))
			return
		}

		profile, err := svc.Get(r.Context(), account)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if profile == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, profileResponseFromModel(profile))
	}
}

type escrowResponse struct {
	PaymentID        uint64     `json:"payment_id"`
	Arbiter          uuid.UUID  `json:"arbiter"`
	ReleaseCondition string     `json:"release_condition"`
	DisputeDeadline  time.Time  `json:"dispute_deadline"`
	Disputed         bool       `json:"disputed"`
	DisputeReason    *string    `json:"dispute_reason,omitempty"`
	LockedCents      int64      `json:"locked_cents"`
	DisputedAt       *time.Time `json:"disputed_at,omitempty"`
}

func escrowResponseFromModel(m *models.EscrowDetail) *escrowResponse {
	if m == nil {
		return nil
	}
	return &escrowResponse{
		PaymentID:        m.PaymentID,
		Arbiter:          m.Arbiter,
		ReleaseCondition: m.ReleaseCondition,
		DisputeDeadline:  m.DisputeDeadline,
		Disputed:         m.Disputed,
		DisputeReason:    m.DisputeReason,
		LockedCents:      m.LockedCents,
		DisputedAt:       m.DisputedAt,
	}
}

type transactionResponse struct {
	ID        uint64            `json:"id"`
	Sender    uuid.UUID         `json:"sender"`
	Recipient uuid.UUID         `json:"recipient"`
	NetCents  int64             `json:"net_cents"`
	FeeCents  int64             `json:"fee_cents"`
	Mode      enums.PaymentMode `json:"mode"`
	SettledAt time.Time         `json:"settled_at"`
}

func transactionResponseFromModel(m *models.TransactionRecord) *transactionResponse {
	if m == nil {
		return nil
	}
	return &transactionResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		NetCents:  m.NetCents,
		FeeCents:  m.FeeCents,
		Mode:      m.Mode,
		SettledAt: m.SettledAt,
	}
}

type profileResponse struct {
	AccountID          uuid.UUID `json:"account_id"`
	TotalSentCents     int64     `json:"total_sent_cents"`
	TotalReceivedCents int64     `json:"total_received_cents"`
	TxCount            int64     `json:"tx_count"`
	ReputationScore    int       `json:"reputation_score"`
	Verified           bool      `json:"verified"`
	RegisteredAt       time.Time `json:"registered_at"`
}

func profileResponseFromModel(m *models.UserProfile) *profileResponse {
	if m == nil {
		return nil
	}
	return &profileResponse{
		AccountID:          m.AccountID,
		TotalSentCents:     m.TotalSentCents,
		TotalReceivedCents: m.TotalReceivedCents,
		TxCount:            m.TxCount,
		ReputationScore:    m.ReputationScore,
		Verified:           m.Verified,
		RegisteredAt:       m.RegisteredAt,
	}
}
