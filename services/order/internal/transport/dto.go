package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items"`
	// AddressID falls back to the customer's default address when empty.
	AddressID          uuid.UUID            `json:"address_id"`
	ShippingCharges    decimal.Decimal      `json:"shipping_charges"`
	TaxAmount          decimal.Decimal      `json:"tax_amount"`
	Discount           decimal.Decimal      `json:"discount"`
	GrandTotal         decimal.Decimal      `json:"grand_total"`
	PaymentMethod      models.PaymentMethod `json:"payment_method"`
	PaymentEvidenceURL string               `json:"payment_evidence_url"`
}

type UpdateStatusRequest struct {
	Status *string `json:"status"`
	Notes  string  `json:"notes"`
}

type UpdatePaymentRequest struct {
	IsPaid        *bool                `json:"is_paid"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	EvidenceURL   string               `json:"evidence_url"`
}

type AssignRequest struct {
	OrderID  uuid.UUID `json:"order_id"`
	DealerID uuid.UUID `json:"dealer_id"`
	Notes    string    `json:"notes"`
}

type UnassignRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	Notes   string    `json:"notes"`
}

type OrderList struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type MatchedProduct struct {
	ItemTitle           string          `json:"item_title"`
	ItemSKU             string          `json:"item_sku"`
	Quantity            int64           `json:"quantity"`
	ProductID           uuid.UUID       `json:"product_id"`
	ProductTitle        string          `json:"product_title"`
	MatchedBy           string          `json:"matched_by"`
	PotentialCommission decimal.Decimal `json:"potential_commission"`
}

type DealerCandidate struct {
	DealerID        uuid.UUID        `json:"dealer_id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	PinCode         string           `json:"pin_code"`
	MatchCount      int              `json:"match_count"`
	TotalItems      int              `json:"total_items"`
	MatchedProducts []MatchedProduct `json:"matched_products"`
}

type DealerCandidates struct {
	PinCode    string            `json:"pin_code"`
	Candidates []DealerCandidate `json:"candidates"`
}

type RegisterDealerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PinCode  string `json:"pin_code"`
}

type SubmitProductRequest struct {
	Title         string          `json:"title"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	DealerPrice   decimal.Decimal `json:"dealer_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
	Stock         int64           `json:"stock"`
}

type PricingRequest struct {
	DealerPrice   decimal.Decimal `json:"dealer_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
}

type CreateAddressRequest struct {
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state"`
	PinCode   string `json:"pin_code"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}
