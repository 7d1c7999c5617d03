package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

type PaymentMethod string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"

	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodCash PaymentMethod = "CASH"
)

// transitions encodes the order state machine. DELIVERED and CANCELLED are
// terminal. Consumer-facing operations only drive the CANCELLED edges; the
// rest are restaurant/courier actions applied through UpdateOrderStatus.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusReady},
	OrderStatusReady:          {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

func CanCancel(s OrderStatus) bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// OrderItem is an immutable snapshot of a cart line taken at submission
// time. It never references live cart state.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type DeliveryPerson struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone,omitempty"`
	ProfileImageURL string    `json:"profileImage,omitempty"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	Status          OrderStatus        `json:"status"`
	Items           []OrderItem        `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	DeliveryFee     float64            `json:"deliveryFee"`
	Discount        float64            `json:"discount"`
	Total           float64            `json:"total"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	ChangeFor       *float64           `json:"changeFor,omitempty"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	DeliveryAddress *Address           `json:"deliveryAddress"`
	Restaurant      *RestaurantSummary `json:"restaurant"`
	DeliveryPerson  *DeliveryPerson    `json:"deliveryPerson,omitempty"`
	Rating          *float64           `json:"rating,omitempty"`
	Comment         string             `json:"comment,omitempty"`
	IsRated         bool               `json:"isRated"`
	DeliveryRating  *float64           `json:"deliveryRating,omitempty"`
	DeliveryComment string             `json:"deliveryComment,omitempty"`
	IsDeliveryRated bool               `json:"isDeliveryRated"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CanRate gates the one-shot order rating: delivered and not yet rated.
func (o *Order) CanRate() bool {
	return o.Status == OrderStatusDelivered && !o.IsRated
}

// CanRateDelivery additionally requires a courier to have been assigned.
func (o *Order) CanRateDelivery() bool {
	return o.Status == OrderStatusDelivered && o.DeliveryPerson != nil && !o.IsDeliveryRated
}

var activeStatuses = map[OrderStatus]bool{
	OrderStatusPending:        true,
	OrderStatusConfirmed:      true,
	OrderStatusPreparing:      true,
	OrderStatusReady:          true,
	OrderStatusOutForDelivery: true,
}

func (o *Order) IsActive() bool {
	return activeStatuses[o.Status]
}

func FilterActive(orders []Order) []Order {

	filtered := make([]Order, 0, len(orders))

	for _, order := range orders {
		if order.IsActive() {
			filtered = append(filtered, order)
		}
	}

	return filtered
}

func FilterPast(orders []Order) []Order {

	filtered := make([]Order, 0, len(orders))

	for _, order := range orders {
		if !order.IsActive() {
			filtered = append(filtered, order)
		}
	}

	return filtered
}

var statusText = map[OrderStatus]string{
	OrderStatusPending:        "Pendente",
	OrderStatusConfirmed:      "Confirmado",
	OrderStatusPreparing:      "Em preparo",
	OrderStatusReady:          "Pronto para entrega",
	OrderStatusOutForDelivery: "Saiu para entrega",
	OrderStatusDelivered:      "Entregue",
	OrderStatusCancelled:      "Cancelado",
}

var statusColor = map[OrderStatus]string{
	OrderStatusPending:        "#FFA500",
	OrderStatusConfirmed:      "#3498DB",
	OrderStatusPreparing:      "#9B59B6",
	OrderStatusReady:          "#2ECC71",
	OrderStatusOutForDelivery: "#1ABC9C",
	OrderStatusDelivered:      "#27AE60",
	OrderStatusCancelled:      "#E74C3C",
}

// StatusText returns the display label; an unknown status passes through
// unchanged.
func StatusText(s OrderStatus) string {
	if text, ok := statusText[s]; ok {
		return text
	}

	return string(s)
}

// StatusColor returns the display color; unknown statuses get a neutral
// grey.
func StatusColor(s OrderStatus) string {
	if color, ok := statusColor[s]; ok {
		return color
	}

	return "#666"
}

type CreateOrderRequest struct {
	AddressID     uuid.UUID     `json:"address_id" validate:"required"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=CARD CASH"`
	ChangeFor     *float64      `json:"changeFor" validate:"omitempty,gt=0"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=PENDING CONFIRMED PREPARING READY OUT_FOR_DELIVERY DELIVERED CANCELLED"`
}

type RateOrderRequest struct {
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string  `json:"comment" validate:"omitempty,max=500"`
}

// DeliveryFeeQuote prices delivery from a restaurant to one of the
// customer's addresses without creating an order.
type DeliveryFeeQuote struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	AddressID    uuid.UUID `json:"address_id"`
	DistanceKm   float64   `json:"distanceKm"`
	Fee          float64   `json:"fee"`
}

type AssignDeliveryPersonRequest struct {
	DeliveryPerson DeliveryPerson `json:"deliveryPerson" validate:"required"`
}

// OrderResponse decorates an order with its display metadata and rating
// predicates, mirroring what the mobile client derives locally.
type OrderResponse struct {
	Order           *Order `json:"order"`
	StatusText      string `json:"statusText"`
	StatusColor     string `json:"statusColor"`
	CanRate         bool   `json:"canRate"`
	CanRateDelivery bool   `json:"canRateDelivery"`
}

func NewOrderResponse(order *Order) *OrderResponse {
	return &OrderResponse{
		Order:           order,
		StatusText:      StatusText(order.Status),
		StatusColor:     StatusColor(order.Status),
		CanRate:         order.CanRate(),
		CanRateDelivery: order.CanRateDelivery(),
	}
}
