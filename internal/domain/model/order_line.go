package model

// OrderLine is one entry of an order batch: a request to take Quantity units
// of a product. Lines are never persisted; a batch must not contain two
// lines for the same product.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}
