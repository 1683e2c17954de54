package dto

type AddCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
