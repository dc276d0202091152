package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

// AddressService keeps at most one default address per customer.
type AddressService struct {
	Repo *repo.GormRepo
}

func (svc *AddressService) Create(ctx context.Context, actor Actor, req transport.CreateAddressRequest) (*models.Address, error) {
	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers keep addresses", ErrForbidden)
	}

	addr := &models.Address{
		CustomerID: actor.ID,
		Line1:      strings.TrimSpace(req.Line1),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PinCode:    strings.TrimSpace(req.PinCode),
		Phone:      strings.TrimSpace(req.Phone),
		IsDefault:  req.IsDefault,
	}
	if addr.Line1 == "" || addr.City == "" || addr.PinCode == "" {
		return nil, fmt.Errorf("%w: line1, city and pin_code required", ErrValidation)
	}

	err := svc.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if !addr.IsDefault {
			// The first address becomes the default.
			_, err := tx.GetDefaultAddress(ctx, actor.ID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				addr.IsDefault = true
			case err != nil:
				return err
			}
		}
		if addr.IsDefault {
			if err := tx.ClearDefaultAddresses(ctx, actor.ID); err != nil {
				return err
			}
		}
		_, err := tx.CreateAddress(ctx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (svc *AddressService) List(ctx context.Context, actor Actor) ([]models.Address, error) {
	return svc.Repo.ListAddresses(ctx, actor.ID)
}

func (svc *AddressService) SetDefault(ctx context.Context, actor Actor, id uuid.UUID) (*models.Address, error) {
	var out *models.Address
	err := svc.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetAddress(ctx, actor.ID, id); err != nil {
			return notFoundAs(err, ErrAddressNotFound)
		}
		if err := tx.ClearDefaultAddresses(ctx, actor.ID); err != nil {
			return err
		}
		if err := tx.MarkDefaultAddress(ctx, actor.ID, id); err != nil {
			return notFoundAs(err, ErrAddressNotFound)
		}
		addr, err := tx.GetAddress(ctx, actor.ID, id)
		out = addr
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
