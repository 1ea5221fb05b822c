package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db"
	"github.com/ofcourt/storefront-backend/pkg/db/models"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

// RecordRepository persists one cart row per authenticated user.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository binds the repository to the provided GORM handle.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *RecordRepository) WithTx(tx *gorm.DB) *RecordRepository {
	if tx == nil {
		return r
	}
	return &RecordRepository{db: tx}
}

// FindByUser returns the user's cart row.
func (r *RecordRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert writes the authoritative item set for the user, creating the row on
// first save. Concurrent upserts overwrite each other; last write wins.
func (r *RecordRepository) Upsert(ctx context.Context, userID uuid.UUID, items types.CartItems) (*models.CartRecord, error) {
	if items == nil {
		items = types.CartItems{}
	}

	record, err := r.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = &models.CartRecord{
			UserID: userID,
			Items:  items,
		}
		createErr := r.db.WithContext(ctx).Create(record).Error
		if createErr == nil {
			return record, nil
		}
		// a concurrent first save can win the insert; fall through to update
		if !db.IsUniqueViolation(createErr, "cart_records_user_id_key") {
			return nil, createErr
		}
		record, err = r.FindByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	record.Items = items
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteByUser removes the user's cart row. Missing rows are not an error.
func (r *RecordRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartRecord{}).Error
}
