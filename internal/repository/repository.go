package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository
type Repository struct {
	db *gorm.DB

	User           UserRepository
	Access         AccessRepository
	Institution    InstitutionRepository
	Property       PropertyRepository
	Slot           SlotRepository
	Appointment    AppointmentRepository
	Waitlist       WaitlistRepository
	Pricing        PricingRepository
	CustomFee      CustomFeeRepository
	PriceHistory   PriceHistoryRepository
	Campaign       CampaignRepository
	CampaignSchool CampaignSchoolRepository
	CampaignUsage  CampaignUsageRepository
	Post           PostRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		Access:         NewAccessRepo(db),
		Institution:    NewInstitutionRepo(db),
		Property:       NewPropertyRepo(db),
		Slot:           NewSlotRepo(db),
		Appointment:    NewAppointmentRepo(db),
		Waitlist:       NewWaitlistRepo(db),
		Pricing:        NewPricingRepo(db),
		CustomFee:      NewCustomFeeRepo(db),
		PriceHistory:   NewPriceHistoryRepo(db),
		Campaign:       NewCampaignRepo(db),
		CampaignSchool: NewCampaignSchoolRepo(db),
		CampaignUsage:  NewCampaignUsageRepo(db),
		Post:           NewPostRepo(db),
	}
}

// BeginTx opens a transaction. Returns a nil tx when the aggregate has no
// connection (hand-built in unit tests).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate whose repositories run on tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn inside one transaction, committing on nil and rolling
// back on error or panic
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
