package domain

import "time"

type OrderStatus string

// Known order statuses. Status values are not validated; any string may
// replace any other.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderEventType string

const (
	OrderCreated OrderEventType = "order.created"
	OrderUpdated OrderEventType = "order.updated"
)

type OrderEvent struct {
	EventID   string         `json:"event_id"`
	Type      OrderEventType `json:"type"`
	OrderID   string         `json:"order_id"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Order     Record         `json:"order"`
}
