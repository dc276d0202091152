package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

// Matcher decides whether some product in a dealer's catalog can fulfil an
// order line. It returns the index of the first matching product.
type Matcher interface {
	Name() string
	Match(item models.OrderItem, catalog []models.Product) (int, bool)
}

type IdentityMatcher struct{}

func (IdentityMatcher) Name() string { return "product_id" }

func (IdentityMatcher) Match(item models.OrderItem, catalog []models.Product) (int, bool) {
	for i, p := range catalog {
		if p.ID == item.ProductID {
			return i, true
		}
	}
	return 0, false
}

type SKUTitleMatcher struct{}

func (SKUTitleMatcher) Name() string { return "sku_title" }

func (SKUTitleMatcher) Match(item models.OrderItem, catalog []models.Product) (int, bool) {
	sku := normalize(item.SKU)
	if sku == "" {
		return 0, false
	}
	title := normalize(item.Title)
	for i, p := range catalog {
		if normalize(p.SKU) == sku && normalize(p.Title) == title {
			return i, true
		}
	}
	return 0, false
}

type SKUMatcher struct{}

func (SKUMatcher) Name() string { return "sku" }

func (SKUMatcher) Match(item models.OrderItem, catalog []models.Product) (int, bool) {
	sku := normalize(item.SKU)
	if sku == "" {
		return 0, false
	}
	for i, p := range catalog {
		if normalize(p.SKU) == sku {
			return i, true
		}
	}
	return 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultMatchers is the tier order used for dealer candidates: exact
// product first, then SKU and title, then SKU alone.
func DefaultMatchers() []Matcher {
	return []Matcher{IdentityMatcher{}, SKUTitleMatcher{}, SKUMatcher{}}
}

type MatchingService struct {
	Repo     *repo.GormRepo
	Matchers []Matcher
}

func (svc *MatchingService) matchers() []Matcher {
	if len(svc.Matchers) == 0 {
		return DefaultMatchers()
	}
	return svc.Matchers
}

// CandidatesForOrder ranks dealers for an order. pinCode overrides the
// order's delivery postal code when set.
func (svc *MatchingService) CandidatesForOrder(ctx context.Context, actor Actor, orderID uuid.UUID, pinCode string) (*transport.DealerCandidates, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}

	order, err := svc.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundAs(err, ErrOrderNotFound)
	}

	pin := strings.TrimSpace(pinCode)
	if pin == "" {
		pin = order.DeliveryPinCode
	}

	candidates, err := svc.FindDealerCandidates(ctx, pin, order.Items)
	if err != nil {
		return nil, err
	}
	return &transport.DealerCandidates{PinCode: pin, Candidates: candidates}, nil
}

// FindDealerCandidates scores every active dealer in the postal code against
// the order lines. The result is read-only and deterministic for identical
// inputs: dealers with more matching lines first, ties in repository order.
func (svc *MatchingService) FindDealerCandidates(ctx context.Context, pinCode string, items []models.OrderItem) ([]transport.DealerCandidate, error) {
	if pinCode == "" {
		return nil, fmt.Errorf("%w: pin_code required", ErrValidation)
	}

	dealers, err := svc.Repo.ListActiveDealersByPinCode(ctx, pinCode)
	if err != nil {
		return nil, err
	}
	out := make([]transport.DealerCandidate, 0, len(dealers))
	if len(dealers) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(dealers))
	for i, d := range dealers {
		ids[i] = d.ID
	}
	catalogs, err := svc.Repo.ListProductsByDealers(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, d := range dealers {
		out = append(out, svc.score(d, items, catalogs[d.ID]))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchCount > out[j].MatchCount
	})
	return out, nil
}

func (svc *MatchingService) score(d models.Account, items []models.OrderItem, catalog []models.Product) transport.DealerCandidate {
	c := transport.DealerCandidate{
		DealerID:        d.ID,
		Name:            d.Name,
		Email:           d.Email,
		PinCode:         d.PinCode,
		TotalItems:      len(items),
		MatchedProducts: []transport.MatchedProduct{},
	}

	for _, item := range items {
		for _, m := range svc.matchers() {
			idx, ok := m.Match(item, catalog)
			if !ok {
				continue
			}
			p := catalog[idx]
			c.MatchCount++
			c.MatchedProducts = append(c.MatchedProducts, transport.MatchedProduct{
				ItemTitle:           item.Title,
				ItemSKU:             item.SKU,
				Quantity:            item.Quantity,
				ProductID:           p.ID,
				ProductTitle:        p.Title,
				MatchedBy:           m.Name(),
				PotentialCommission: p.Commission.Mul(decimal.NewFromInt(item.Quantity)),
			})
			break
		}
	}
	return c
}
