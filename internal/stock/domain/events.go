package domain

type StockReceived struct {
	ProductID  string `json:"product_id"`
	SupplierID string `json:"supplier_id"`
	Quantity   int    `json:"quantity"`
}

type StockConsumed struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
