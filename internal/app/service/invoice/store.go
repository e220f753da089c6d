package invoice

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/types"
)

// ErrUnknownInvoice indicates an id that does not resolve to an invoice.
var ErrUnknownInvoice = errors.New("unknown invoice")

// Store is the persistence boundary of the invoice state machine.
type Store interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Find(ctx context.Context, id uint) (*models.Invoice, error)
	FindPayer(ctx context.Context, id uint) (*models.Payer, error)
	FindTour(ctx context.Context, id uint) (*models.Tour, error)
	// Complete transitions the invoice WAITING -> COMPLETED. It reports
	// whether this call performed the transition; false with a nil error
	// means the invoice was already completed.
	Complete(ctx context.Context, id uint) (bool, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Create(ctx context.Context, inv *models.Invoice) error {
	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (s *gormStore) Find(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownInvoice, id)
		}
		return nil, fmt.Errorf("failed to load invoice %d: %w", id, err)
	}
	return &inv, nil
}

func (s *gormStore) FindPayer(ctx context.Context, id uint) (*models.Payer, error) {
	var p models.Payer
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load payer %d: %w", id, err)
	}
	return &p, nil
}

func (s *gormStore) FindTour(ctx context.Context, id uint) (*models.Tour, error) {
	var t models.Tour
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load tour %d: %w", id, err)
	}
	return &t, nil
}

// Complete is a conditional update, not a read-modify-write: two concurrent
// deliveries of the same confirmation race on the WHERE clause and exactly
// one of them observes RowsAffected == 1.
func (s *gormStore) Complete(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND status_payment = ?", id, types.PaymentStatusWaiting).
		Update("status_payment", types.PaymentStatusCompleted)
	if res.Error != nil {
		return false, fmt.Errorf("failed to complete invoice %d: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	// Distinguish "already completed" from "no such invoice".
	if _, err := s.Find(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
