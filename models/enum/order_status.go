package enum

// OrderStatus is the order lifecycle as this core sees it. The remote store
// may track further states; they are not modeled here.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFailed    OrderStatus = "failed"
)
