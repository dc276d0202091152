package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

var ErrNoClient = errors.New("search: elasticsearch client is nil")

// OrderIndex mirrors orders into an Elasticsearch index for staff search.
// The database stays authoritative; the index only yields ids.
type OrderIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewOrderIndex(client *elasticsearch.Client, index string) (*OrderIndex, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if index == "" {
		index = "orders"
	}
	return &OrderIndex{client: client, index: index}, nil
}

type orderDoc struct {
	OrderNumber     string             `json:"order_number"`
	CustomerID      string             `json:"customer_id"`
	DealerID        string             `json:"dealer_id,omitempty"`
	Status          models.OrderStatus `json:"status"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentStatus   bool               `json:"payment_status"`
	DeliveryCity    string             `json:"delivery_city"`
	DeliveryPinCode string             `json:"delivery_pin_code"`
	GrandTotal      string             `json:"grand_total"`
	ItemTitles      []string           `json:"item_titles"`
	ItemSKUs        []string           `json:"item_skus"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toDoc(o *models.Order) orderDoc {
	d := orderDoc{
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID.String(),
		Status:          o.Status,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   o.PaymentStatus,
		DeliveryCity:    o.DeliveryCity,
		DeliveryPinCode: o.DeliveryPinCode,
		GrandTotal:      o.GrandTotal.StringFixed(2),
		ItemTitles:      make([]string, 0, len(o.Items)),
		ItemSKUs:        make([]string, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Assignment.DealerID != nil {
		d.DealerID = o.Assignment.DealerID.String()
	}
	for _, it := range o.Items {
		d.ItemTitles = append(d.ItemTitles, it.Title)
		if it.SKU != "" {
			d.ItemSKUs = append(d.ItemSKUs, it.SKU)
		}
	}
	return d
}

func (x *OrderIndex) IndexOrder(ctx context.Context, o *models.Order) error {
	body, err := json.Marshal(toDoc(o))
	if err != nil {
		return fmt.Errorf("search: marshal order: %w", err)
	}

	res, err := x.client.Index(
		x.index,
		bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(o.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index order: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: index returned %s: %s", res.Status(), msg)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (x *OrderIndex) SearchOrderIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"order_number^3", "item_titles", "item_skus^2", "delivery_pin_code", "delivery_city", "status"},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("search: marshal query: %w", err)
	}

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
		x.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: query returned %s: %s", res.Status(), msg)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
