package dto

// CreateOrderRequest 下单请求
// user_id可以不传，默认为当前登录用户
type CreateOrderRequest struct {
	UserID uint               `json:"user_id" example:"1"`
	Items  []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest 下单明细
type OrderItemRequest struct {
	BookID   uint `json:"book_id" binding:"required,gt=0" example:"1"`
	Quantity int  `json:"quantity" binding:"required,gt=0" example:"2"`
}
