package dto

type StockQuantityInput struct {
	ProductID string
	Quantity  int64
}

// AdjustStockInput is a batch of stock changes. ReferenceID and Reason end up on the movement log.
type AdjustStockInput struct {
	Items       []StockQuantityInput
	ReferenceID string
	Reason      string
}
