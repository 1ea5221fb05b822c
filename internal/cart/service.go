package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/kv"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/redis"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

// recordStore is the persistence surface for user carts.
type recordStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Upsert(ctx context.Context, userID uuid.UUID, items types.CartItems) (*models.CartRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// Service owns cart reads, writes, and the guest-to-user merge. Guest carts
// live behind the KV port keyed by device id; user carts are one row each.
type Service struct {
	records  recordStore
	kv       kv.Store
	guestTTL time.Duration
	logg     *logger.Logger
	gate     *mergeGate
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Records  recordStore
	KV       kv.Store
	GuestTTL time.Duration
	Logger   *logger.Logger
}

// NewService validates dependencies and builds the cart service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Records == nil {
		return nil, errors.New("cart record store is required")
	}
	if params.KV == nil {
		return nil, errors.New("cart kv store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("cart logger is required")
	}
	ttl := params.GuestTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		records:  params.Records,
		kv:       params.KV,
		guestTTL: ttl,
		logg:     params.Logger,
		gate:     newMergeGate(),
	}, nil
}

// Get returns the subject's cart. A cart that was never written is empty,
// not an error. User reads wait for any in-flight merge to settle first.
func (s *Service) Get(ctx context.Context, subject Subject) (types.CartItems, error) {
	if subject.IsUser() {
		if err := s.gate.wait(ctx, subject.UserID); err != nil {
			return nil, err
		}
		return s.loadUser(ctx, subject.UserID)
	}
	return s.loadGuest(ctx, subject.DeviceID)
}

// AddItem appends a line to the cart and persists the result. The line gets
// a fresh cart id; a zero total price is derived from unit price and quantity.
func (s *Service) AddItem(ctx context.Context, subject Subject, item types.CartItem) (types.CartItems, error) {
	if item.CartID == "" {
		item.CartID = uuid.NewString()
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.TotalPrice == 0 && item.UnitPrice != 0 {
		item.TotalPrice = item.UnitPrice * float64(item.Quantity)
	}

	items, err := s.Get(ctx, subject)
	if err != nil {
		return nil, err
	}
	items = append(items, item)

	if err := s.save(ctx, subject, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem drops the line with the given cart id. Removing an id that is
// not present is a no-op.
func (s *Service) RemoveItem(ctx context.Context, subject Subject, cartID string) (types.CartItems, error) {
	items, err := s.Get(ctx, subject)
	if err != nil {
		return nil, err
	}

	kept := make(types.CartItems, 0, len(items))
	removed := false
	for _, item := range items {
		if item.CartID == cartID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return items, nil
	}

	if err := s.save(ctx, subject, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the subject's cart.
func (s *Service) Clear(ctx context.Context, subject Subject) error {
	if subject.IsUser() {
		if err := s.gate.wait(ctx, subject.UserID); err != nil {
			return err
		}
		if err := s.records.DeleteByUser(ctx, subject.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing user cart")
		}
		return nil
	}
	if err := s.kv.Del(ctx, redis.GuestCartKey(subject.DeviceID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing guest cart")
	}
	return nil
}

// MergeGuestIntoUser folds the device cart into the user's persisted cart as
// a set union, remote lines first, and clears the device cart on success.
// User-cart reads and writes observed during the merge wait for it to settle.
func (s *Service) MergeGuestIntoUser(ctx context.Context, deviceID string, userID uuid.UUID) (types.CartItems, error) {
	if deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if err := s.gate.acquire(ctx, userID); err != nil {
		return nil, err
	}
	defer s.gate.release(userID)

	local, err := s.loadGuest(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	remote, err := s.loadUserDegraded(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(local) == 0 {
		return remote, nil
	}

	merged := MergeItems(remote, local)
	if _, err := s.records.Upsert(ctx, userID, merged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting merged cart")
	}

	if err := s.kv.Del(ctx, redis.GuestCartKey(deviceID)); err != nil {
		// the merge committed; a stale guest key re-merges idempotently
		s.logg.Warn(s.logg.WithDeviceID(ctx, deviceID), "failed to clear guest cart after merge")
	}

	return merged, nil
}

func (s *Service) save(ctx context.Context, subject Subject, items types.CartItems) error {
	if subject.IsUser() {
		if err := s.gate.wait(ctx, subject.UserID); err != nil {
			return err
		}
		if _, err := s.records.Upsert(ctx, subject.UserID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving user cart")
		}
		return nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding guest cart")
	}
	if err := s.kv.Set(ctx, redis.GuestCartKey(subject.DeviceID), string(payload), s.guestTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving guest cart")
	}
	return nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (types.CartItems, error) {
	record, err := s.records.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.CartItems{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user cart")
	}
	return record.Items, nil
}

// loadUserDegraded treats read failures as an absent remote cart so a broken
// read cannot block the sign-in merge.
func (s *Service) loadUserDegraded(ctx context.Context, userID uuid.UUID) (types.CartItems, error) {
	record, err := s.records.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.CartItems{}, nil
	}
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "remote cart read failed, merging local-only")
		return types.CartItems{}, nil
	}
	return record.Items, nil
}

func (s *Service) loadGuest(ctx context.Context, deviceID string) (types.CartItems, error) {
	raw, err := s.kv.Get(ctx, redis.GuestCartKey(deviceID))
	if errors.Is(err, kv.ErrNotFound) {
		return types.CartItems{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading guest cart")
	}

	var items types.CartItems
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding guest cart")
	}
	return items, nil
}
