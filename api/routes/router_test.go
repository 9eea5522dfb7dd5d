package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/internal/payments"
	pkgAuth "github.com/angelmondragon/payflow-backend/pkg/auth"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPaymentsService struct {
	createRequest func(ctx context.Context, actor uuid.UUID, input payments.CreateRequestInput) (*models.PaymentRequest, error)
	complete      func(ctx context.Context, actor uuid.UUID, paymentID uint64) (*payments.Receipt, error)
	getRequest    func(ctx context.Context, id uint64) (*models.PaymentRequest, error)
}

func (s *stubPaymentsService) CreateRequest(ctx context.Context, actor uuid.UUID, input payments.CreateRequestInput) (*models.PaymentRequest, error) {
	if s.createRequest != nil {
		return s.createRequest(ctx, actor, input)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubPaymentsService) CompleteRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*payments.Receipt, error) {
	if s.complete != nil {
		return s.complete(ctx, actor, paymentID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubPaymentsService) CancelRequest(ctx context.Context, actor uuid.UUID, paymentID uint64) (*models.PaymentRequest, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) PayInstant(ctx context.Context, actor uuid.UUID, input payments.InstantInput) (*payments.Receipt, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) CreateEscrow(ctx context.Context, actor uuid.UUID, input payments.CreateEscrowInput) (*models.PaymentRequest, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) ReleaseEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64) (*payments.Receipt, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) DisputeEscrow(ctx context.Context, actor uuid.UUID, paymentID uint64, reason string) error {
	panic("unimplemented")
}

func (s *stubPaymentsService) SetupSchedule(ctx context.Context, actor uuid.UUID, input payments.ScheduleInput) (*models.RecurringSchedule, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) ExecuteSchedule(ctx context.Context, actor uuid.UUID, scheduleID uint64) (*payments.ScheduleReceipt, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) CreateGroup(ctx context.Context, actor uuid.UUID, input payments.GroupInput) (*models.PaymentGroup, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) PayGroupShare(ctx context.Context, actor uuid.UUID, groupID uint64) (*payments.GroupReceipt, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) ExpireStaleRequests(ctx context.Context, limit int) (int, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) DueSchedules(ctx context.Context, limit int) ([]models.RecurringSchedule, error) {
	panic("unimplemented")
}

func (s *stubPaymentsService) GetRequest(ctx context.Context, id uint64) (*models.PaymentRequest, error) {
	if s.getRequest != nil {
		return s.getRequest(ctx, id)
	}
	return nil, nil
}

func (s *stubPaymentsService) GetEscrow(ctx context.Context, paymentID uint64) (*models.EscrowDetail, error) {
	return nil, nil
}

func (s *stubPaymentsService) GetSchedule(ctx context.Context, id uint64) (*models.RecurringSchedule, error) {
	return nil, nil
}

func (s *stubPaymentsService) GetGroup(ctx context.Context, id uint64) (*models.PaymentGroup, []models.GroupParticipant, error) {
	return nil, nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "payflow",
			ExpirationMinutes: 60,
		},
		RateLimit: config.RateLimitConfig{Window: time.Minute, MutationLimit: 100},
	}
}

func newTestRouter(cfg *config.Config, svc payments.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Payments: svc,
	})
}

func buildToken(t *testing.T, cfg *config.Config, account uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{AccountID: account})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPaymentsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubPaymentsService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCreateRequestRoundTrip(t *testing.T) {
	cfg := testConfig()
	actor := uuid.New()
	recipient := uuid.New()

	svc := &stubPaymentsService{
		createRequest: func(_ context.Context, gotActor uuid.UUID, input payments.CreateRequestInput) (*models.PaymentRequest, error) {
			if gotActor != actor {
				t.Fatalf("actor mismatch: %s", gotActor)
			}
			if input.Recipient != recipient || input.AmountCents != 5_000_000 || input.TTL != time.Hour {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.PaymentRequest{
				ID:          7,
				Sender:      actor,
				Recipient:   recipient,
				AmountCents: input.AmountCents,
				Mode:        enums.PaymentModeInstant,
				Status:      enums.PaymentStatusPending,
				ExpiresAt:   time.Now().Add(input.TTL),
			}, nil
		},
	}
	router := newTestRouter(cfg, svc)

	body, _ := json.Marshal(map[string]any{
		"recipient":    recipient.String(),
		"amount_cents": 5_000_000,
		"ttl_seconds":  3600,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/requests", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, actor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["id"].(float64) != 7 {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubPaymentsService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/requests", bytes.NewBufferString(`{"amount_cents":-5}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestDomainErrorsMapToStatuses(t *testing.T) {
	cfg := testConfig()
	svc := &stubPaymentsService{
		complete: func(context.Context, uuid.UUID, uint64) (*payments.Receipt, error) {
			return nil, pkgerrors.New(pkgerrors.CodePaused, "platform is paused")
		},
	}
	router := newTestRouter(cfg, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/requests/7/complete", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for paused platform got %d", resp.Code)
	}
}

func TestLookupMissReturnsNullData(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubPaymentsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/requests/99", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on miss got %d", resp.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data != nil {
		t.Fatalf("expected null data got %v", envelope.Data)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), &stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDevTokenRouteHiddenInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = "production"
	router := newTestRouter(cfg, &stubPaymentsService{})

	req := httptest.NewRequest(http.MethodPost, "/api/dev/v1/token", bytes.NewBufferString(`{"account_id":"`+uuid.NewString()+`"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound && resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected dev token route to be absent, got %d", resp.Code)
	}
}
