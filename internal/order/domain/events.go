package domain

type OrderCreated struct {
	OrderID  string           `json:"order_id"`
	Number   string           `json:"number"`
	Customer string           `json:"customer"`
	Lines    []OrderLineEvent `json:"lines"`
}

type OrderLineEvent struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderCompleted struct {
	OrderID string `json:"order_id"`
}

type OrderCanceled struct {
	OrderID string `json:"order_id"`
}
