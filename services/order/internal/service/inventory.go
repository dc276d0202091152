package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type StockStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
}

type ReservationLine struct {
	ProductID uuid.UUID
	Quantity  int64
	// Index is the position of the line in the caller's request.
	Index int
}

// Inventory reserves stock for checkout lines. It must be given a store
// bound to the caller's transaction so a failed line undoes the earlier ones.
type Inventory struct{}

// Reserve validates and decrements stock for every line and returns the
// product rows as read before the decrement, keyed by id. Lines are
// processed in product id order so concurrent reservations touch rows in
// the same sequence.
func (Inventory) Reserve(ctx context.Context, store StockStore, lines []ReservationLine) (map[uuid.UUID]models.Product, error) {
	sorted := make([]ReservationLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	products := make(map[uuid.UUID]models.Product, len(sorted))
	for _, line := range sorted {
		if line.Quantity < 1 {
			return nil, lineError(line, fmt.Errorf("%w: quantity must be >= 1", ErrValidation))
		}
		prod, err := store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, lineError(line, notFoundAs(err, ErrProductNotFound))
		}
		if err := checkAvailable(prod, line.Quantity); err != nil {
			return nil, lineError(line, err)
		}

		ok, err := store.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			// Lost a race between the read and the update; classify from fresh state.
			return nil, lineError(line, classify(ctx, store, line))
		}
		products[line.ProductID] = *prod
	}
	return products, nil
}

func checkAvailable(p *models.Product, qty int64) error {
	if !p.IsActive || !p.IsApproved {
		return ErrProductUnavailable
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	return nil
}

func classify(ctx context.Context, store StockStore, line ReservationLine) error {
	prod, err := store.GetProduct(ctx, line.ProductID)
	if err != nil {
		return notFoundAs(err, ErrProductNotFound)
	}
	if err := checkAvailable(prod, line.Quantity); err != nil {
		return err
	}
	return ErrInsufficientStock
}

func lineError(line ReservationLine, err error) error {
	return &LineError{ProductID: line.ProductID, Index: line.Index, Err: err}
}

// mergeLines folds repeated products into one line, keeping the position of
// the first occurrence. A merged quantity that would overflow is rejected on
// the line that pushed it over.
func mergeLines(lines []ReservationLine) ([]ReservationLine, error) {
	pos := make(map[uuid.UUID]int, len(lines))
	out := make([]ReservationLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, lineError(l, fmt.Errorf("%w: quantity must be >= 1", ErrValidation))
		}
		if i, ok := pos[l.ProductID]; ok {
			if l.Quantity > math.MaxInt64-out[i].Quantity {
				return nil, lineError(l, fmt.Errorf("%w: merged quantity too large", ErrValidation))
			}
			out[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}
