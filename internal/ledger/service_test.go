package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, record *models.TransactionRecord) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, record *models.TransactionRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, record)
	}
	return nil
}

func (f *fakeRepository) Find(ctx context.Context, id uint64) (*models.TransactionRecord, error) {
	return nil, nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, account uuid.UUID, limit int, beforeID uint64) ([]models.TransactionRecord, error) {
	return nil, nil
}

type fakeAllocator struct {
	next uint64
}

func (f *fakeAllocator) Next(tx *gorm.DB, name string) (uint64, error) {
	f.next++
	return f.next, nil
}

func TestAppendAllocatesAscendingIDs(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo, &fakeAllocator{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created []*models.TransactionRecord
	repo.createFn = func(ctx context.Context, record *models.TransactionRecord) error {
		created = append(created, record)
		return nil
	}

	input := AppendInput{
		Sender:    uuid.New(),
		Recipient: uuid.New(),
		NetCents:  4_987_500,
		FeeCents:  12_500,
		Mode:      enums.PaymentModeInstant,
		SettledAt: time.Now().UTC(),
	}

	tx := &gorm.DB{}
	first, err := svc.Append(context.Background(), tx, input)
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	second, err := svc.Append(context.Background(), tx, input)
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", first.ID, second.ID)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(created))
	}
	if created[0].NetCents != 4_987_500 || created[0].FeeCents != 12_500 {
		t.Fatalf("unexpected amounts: %+v", created[0])
	}
}

func TestAppendValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, &fakeAllocator{})
	tx := &gorm.DB{}

	tests := []struct {
		name  string
		input AppendInput
	}{
		{"missing sender", AppendInput{Recipient: uuid.New(), NetCents: 1, Mode: enums.PaymentModeInstant}},
		{"missing recipient", AppendInput{Sender: uuid.New(), NetCents: 1, Mode: enums.PaymentModeInstant}},
		{"bad mode", AppendInput{Sender: uuid.New(), Recipient: uuid.New(), NetCents: 1, Mode: "weird"}},
		{"non-positive net", AppendInput{Sender: uuid.New(), Recipient: uuid.New(), NetCents: 0, Mode: enums.PaymentModeGroup}},
		{"negative fee", AppendInput{Sender: uuid.New(), Recipient: uuid.New(), NetCents: 1, FeeCents: -1, Mode: enums.PaymentModeGroup}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Append(context.Background(), tx, tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAppendRequiresTransaction(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, &fakeAllocator{})
	_, err := svc.Append(context.Background(), nil, AppendInput{})
	if err == nil {
		t.Fatal("expected error without transaction")
	}
}
