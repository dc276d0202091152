package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Notifier Notifier
}

// SubmitProduct adds a product to the calling dealer's catalog. It stays out
// of checkout until staff approve it.
func (svc *CatalogService) SubmitProduct(ctx context.Context, actor Actor, req transport.SubmitProductRequest) (*models.Product, error) {
	if actor.Role != models.RoleDealer {
		return nil, fmt.Errorf("%w: dealers only", ErrForbidden)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	commission, err := commissionOf(req.DealerPrice, req.CustomerPrice)
	if err != nil {
		return nil, err
	}

	dealer, err := svc.Repo.GetAccount(ctx, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrDealerNotFound)
	}
	if !dealer.IsActive {
		return nil, fmt.Errorf("%w: dealer account not approved", ErrForbidden)
	}

	prod := &models.Product{
		DealerID:      dealer.ID,
		Title:         title,
		SKU:           strings.TrimSpace(req.SKU),
		Description:   req.Description,
		DealerPrice:   req.DealerPrice,
		CustomerPrice: req.CustomerPrice,
		Commission:    commission,
		Stock:         req.Stock,
		IsApproved:    false,
		IsActive:      true,
		PinCode:       dealer.PinCode,
	}
	if _, err := svc.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	if svc.Notifier != nil {
		productID, dealerID := prod.ID, dealer.ID
		if _, err := svc.Notifier.Notify(ctx, &models.Notification{
			Message:   fmt.Sprintf("New product awaiting approval: %s from %s", prod.Title, dealer.Name),
			Type:      models.NotificationProduct,
			ProductID: &productID,
			DealerID:  &dealerID,
			Payload:   map[string]any{"title": prod.Title, "sku": prod.SKU},
		}); err != nil {
			logging.FromContext(ctx).Warn("notify_product_submission_failed", "product_id", prod.ID, "error", err)
		}
	}
	return prod, nil
}

func (svc *CatalogService) GetProduct(ctx context.Context, actor Actor, id uuid.UUID) (*models.Product, error) {
	p, err := svc.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	if p.IsApproved || actor.Role.Staff() || (actor.Role == models.RoleDealer && p.DealerID == actor.ID) {
		return p, nil
	}
	return nil, ErrProductNotFound
}

func (svc *CatalogService) ApproveProduct(ctx context.Context, actor Actor, id uuid.UUID) (*models.Product, error) {
	if !actor.Role.Staff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	p, err := svc.Repo.SetProductApproval(ctx, id, true, true)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return p, nil
}

func (svc *CatalogService) SetPricing(ctx context.Context, actor Actor, id uuid.UUID, req transport.PricingRequest) (*models.Product, error) {
	if !actor.Role.Staff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	commission, err := commissionOf(req.DealerPrice, req.CustomerPrice)
	if err != nil {
		return nil, err
	}
	p, err := svc.Repo.UpdateProductPricing(ctx, id, req.DealerPrice, req.CustomerPrice, commission)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return p, nil
}

// commissionOf is the platform's cut per unit: what the customer pays minus
// what the dealer receives.
func commissionOf(dealerPrice, customerPrice decimal.Decimal) (decimal.Decimal, error) {
	if dealerPrice.IsNegative() || customerPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: prices must be >= 0", ErrValidation)
	}
	if !wholeCents(dealerPrice) || !wholeCents(customerPrice) {
		return decimal.Zero, fmt.Errorf("%w: prices must have at most 2 decimal places", ErrValidation)
	}
	if customerPrice.LessThan(dealerPrice) {
		return decimal.Zero, fmt.Errorf("%w: customer_price must be >= dealer_price", ErrValidation)
	}
	return customerPrice.Sub(dealerPrice), nil
}

func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
