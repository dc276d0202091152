package service

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

var statuses = []models.OrderStatus{
	models.StatusOrderPlaced,
	models.StatusProcessing,
	models.StatusPacked,
	models.StatusReadyForDispatch,
	models.StatusShipped,
	models.StatusOutForDelivery,
	models.StatusDelivered,
	models.StatusCancelled,
	models.StatusReturned,
}

// allowedTransitions lists, per status, which statuses it may move to.
// Staff correct mistakes by moving orders backwards, so every status is
// reachable from every other one. Tighten an entry here to forbid a move.
var allowedTransitions = func() map[models.OrderStatus]map[models.OrderStatus]bool {
	m := make(map[models.OrderStatus]map[models.OrderStatus]bool, len(statuses))
	for _, from := range statuses {
		m[from] = make(map[models.OrderStatus]bool, len(statuses))
		for _, to := range statuses {
			m[from][to] = true
		}
	}
	return m
}()

// ParseStatus accepts only the nine lifecycle values, case-insensitively.
func ParseStatus(raw string) (models.OrderStatus, error) {
	s := models.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := allowedTransitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatusValue, raw)
	}
	return s, nil
}

func CanTransition(from, to models.OrderStatus) bool {
	return allowedTransitions[from][to]
}

func Statuses() []models.OrderStatus {
	out := make([]models.OrderStatus, len(statuses))
	copy(out, statuses)
	return out
}
