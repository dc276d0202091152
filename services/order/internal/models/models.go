package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDealer   Role = "dealer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDealer, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

func (r Role) Staff() bool { return r == RoleEmployee || r == RoleAdmin }

type OrderStatus string

const (
	StatusOrderPlaced      OrderStatus = "order_placed"
	StatusProcessing       OrderStatus = "processing"
	StatusPacked           OrderStatus = "packed"
	StatusReadyForDispatch OrderStatus = "ready_for_dispatch"
	StatusShipped          OrderStatus = "shipped"
	StatusOutForDelivery   OrderStatus = "out_for_delivery"
	StatusDelivered        OrderStatus = "delivered"
	StatusCancelled        OrderStatus = "cancelled"
	StatusReturned         OrderStatus = "returned"
)

type PaymentMethod string

const (
	PaymentDeferred PaymentMethod = "deferred"
	PaymentCOD      PaymentMethod = "cod"
	PaymentQR       PaymentMethod = "qr"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentDeferred, PaymentCOD, PaymentQR:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationOrder   NotificationType = "order"
	NotificationDealer  NotificationType = "dealer"
	NotificationProduct NotificationType = "product"
)

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Name         string    `gorm:"not null"                    json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	Role         Role      `gorm:"type:varchar(16);index;not null" json:"role"`
	PinCode      string    `gorm:"type:varchar(16);index"      json:"pin_code"`
	IsActive     bool      `gorm:"not null"                    json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"   json:"customer_id"`
	Line1      string    `gorm:"not null"                   json:"line1"`
	City       string    `gorm:"not null"                   json:"city"`
	State      string    `json:"state"`
	PinCode    string    `gorm:"type:varchar(16);not null"  json:"pin_code"`
	Phone      string    `json:"phone"`
	IsDefault  bool      `gorm:"not null"                   json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	DealerID      uuid.UUID       `gorm:"type:uuid;index;not null"          json:"dealer_id"`
	Title         string          `gorm:"not null"                          json:"title"`
	SKU           string          `gorm:"index"                             json:"sku"`
	Description   string          `json:"description"`
	DealerPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"dealer_price"`
	CustomerPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"customer_price"`
	Commission    decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"commission"`
	Stock         int64           `gorm:"not null;check:stock >= 0"         json:"stock"`
	IsApproved    bool            `gorm:"not null"                          json:"is_approved"`
	IsActive      bool            `gorm:"not null"                          json:"is_active"`
	PinCode       string          `gorm:"type:varchar(16);index"            json:"pin_code"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Assignment is the single current dealer slot of an order. A nil DealerID
// means the slot is empty.
type Assignment struct {
	DealerID   *uuid.UUID `gorm:"type:uuid;index" json:"dealer_id,omitempty"`
	AssignedBy *uuid.UUID `gorm:"type:uuid"       json:"assigned_by,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

func (a Assignment) Active() bool { return a.DealerID != nil }

type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderNumber string    `gorm:"uniqueIndex;not null"        json:"order_number"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index;not null"    json:"customer_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	SubTotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sub_total"`
	ShippingCharges decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_charges"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grand_total"`

	PaymentMethod      PaymentMethod `gorm:"type:varchar(16);not null" json:"payment_method"`
	PaymentStatus      bool          `gorm:"not null"                  json:"payment_status"`
	PaymentEvidenceURL string        `json:"payment_evidence_url,omitempty"`

	DeliveryAddressID uuid.UUID `gorm:"type:uuid"                 json:"delivery_address_id"`
	DeliveryLine      string    `json:"delivery_line"`
	DeliveryCity      string    `json:"delivery_city"`
	DeliveryPinCode   string    `gorm:"type:varchar(16);index"    json:"delivery_pin_code"`

	Status     OrderStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Assignment Assignment  `gorm:"embedded;embeddedPrefix:assignment_" json:"assignment"`

	Timeline []TimelineEntry `gorm:"foreignKey:OrderID" json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a snapshot of the product taken at checkout; it is never
// re-derived from the live catalog.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"      json:"product_id"`
	DealerID  uuid.UUID       `gorm:"type:uuid;not null"            json:"dealer_id"`
	Title     string          `gorm:"not null"                      json:"title"`
	SKU       string          `json:"sku"`
	Quantity  int64           `gorm:"not null;check:quantity >= 1"  json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"line_total"`
}

// TimelineEntry rows are insert-only. Seq is unique per order so two writers
// can never both append the same position.
type TimelineEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"                        json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_order_seq" json:"order_id"`
	Seq       int         `gorm:"not null;uniqueIndex:idx_order_seq"          json:"seq"`
	Status    OrderStatus `gorm:"type:varchar(32);not null"                   json:"status"`
	Notes     string      `json:"notes"`
	ChangedBy uuid.UUID   `gorm:"type:uuid;not null"                          json:"changed_by"`
	At        time.Time   `gorm:"not null"                                    json:"at"`
}

func (TimelineEntry) TableName() string { return "order_timeline_entries" }

type Notification struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"        json:"id"`
	Message      string            `gorm:"not null"                    json:"message"`
	Type         NotificationType  `gorm:"type:varchar(16);not null"   json:"type"`
	TargetUserID *uuid.UUID        `gorm:"type:uuid;index"             json:"target_user_id,omitempty"`
	IsRead       bool              `gorm:"not null;index"              json:"is_read"`
	ReadAt       *time.Time        `json:"read_at,omitempty"`
	OrderID      *uuid.UUID        `gorm:"type:uuid"                   json:"order_id,omitempty"`
	ProductID    *uuid.UUID        `gorm:"type:uuid"                   json:"product_id,omitempty"`
	DealerID     *uuid.UUID        `gorm:"type:uuid"                   json:"dealer_id,omitempty"`
	Payload      datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error      { a.ID = ensureID(a.ID); return nil }
func (a *Address) BeforeCreate(tx *gorm.DB) error      { a.ID = ensureID(a.ID); return nil }
func (p *Product) BeforeCreate(tx *gorm.DB) error      { p.ID = ensureID(p.ID); return nil }
func (o *Order) BeforeCreate(tx *gorm.DB) error        { o.ID = ensureID(o.ID); return nil }
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error    { i.ID = ensureID(i.ID); return nil }
func (e *TimelineEntry) BeforeCreate(tx *gorm.DB) error { e.ID = ensureID(e.ID); return nil }
func (n *Notification) BeforeCreate(tx *gorm.DB) error { n.ID = ensureID(n.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Account{},
		&Address{},
		&Product{},
		&Order{},
		&OrderItem{},
		&TimelineEntry{},
		&Notification{},
	}
}
