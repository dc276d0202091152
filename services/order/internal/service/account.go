package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/pkg/hash"
	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

const minPasswordLen = 8

type AccountService struct {
	Repo     *repo.GormRepo
	Notifier Notifier
}

// RegisterDealer creates an inactive dealer account and tells everyone
// online about it. An admin has to approve it before it can be assigned
// orders or submit products.
func (svc *AccountService) RegisterDealer(ctx context.Context, req transport.RegisterDealerRequest) (*models.Account, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	pin := strings.TrimSpace(req.PinCode)

	if name == "" || email == "" || pin == "" {
		return nil, fmt.Errorf("%w: name, email and pin_code required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleDealer,
		PinCode:      pin,
		IsActive:     false,
	}
	created, err := svc.Repo.CreateAccountIfNotExists(ctx, acc)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	if svc.Notifier != nil {
		dealerID := acc.ID
		if _, err := svc.Notifier.Notify(ctx, &models.Notification{
			Message:  fmt.Sprintf("New dealer registration: %s (%s)", acc.Name, acc.PinCode),
			Type:     models.NotificationDealer,
			DealerID: &dealerID,
			Payload:  map[string]any{"name": acc.Name, "pin_code": acc.PinCode},
		}); err != nil {
			logging.FromContext(ctx).Warn("notify_dealer_registration_failed", "dealer_id", acc.ID, "error", err)
		}
	}

	return acc, nil
}

func (svc *AccountService) ApproveDealer(ctx context.Context, actor Actor, id uuid.UUID) (*models.Account, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}

	acc, err := svc.Repo.GetAccount(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrDealerNotFound)
	}
	if acc.Role != models.RoleDealer {
		return nil, ErrDealerNotFound
	}
	if acc.IsActive {
		return acc, nil
	}

	acc, err = svc.Repo.ActivateAccount(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrDealerNotFound)
	}
	return acc, nil
}
