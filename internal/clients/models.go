package clients

import (
	"encoding/json"
	"time"
)

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
}

const (
	ProductActive     = "active"
	ProductOutOfStock = "out_of_stock"
	ProductInactive   = "inactive"
)

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Price         Amount    `json:"price"`
	OriginalPrice *Amount   `json:"original_price,omitempty"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	Stock         int       `json:"stock"`
	Status        string    `json:"status"`
	Image         string    `json:"image"`
	Images        string    `json:"images,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Category      *Category `json:"category,omitempty"`
}

// ImageList returns the gallery of p. Images holds a JSON array of paths;
// when it is missing or unusable the main image stands alone.
func (p Product) ImageList() []string {
	if p.Images != "" {
		var list []string
		if err := json.Unmarshal([]byte(p.Images), &list); err == nil && len(list) > 0 {
			return list
		}
	}
	if p.Image != "" {
		return []string{p.Image}
	}
	return nil
}

type ProductInput struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug" validate:"required"`
	Description   string  `json:"description"`
	Price         Amount  `json:"price"`
	OriginalPrice *Amount `json:"original_price,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	Stock         int     `json:"stock" validate:"gte=0"`
	Status        string  `json:"status" validate:"required,oneof=active out_of_stock inactive"`
	Image         string  `json:"image"`
	Images        string  `json:"images,omitempty"`
}

type OrderItem struct {
	ID           int64   `json:"id,omitempty"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductPrice Amount  `json:"product_price"`
	Quantity     int     `json:"quantity"`
	Subtotal     *Amount `json:"subtotal,omitempty"`
}

type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerID      int64       `json:"customer_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	CustomerAddress string      `json:"customer_address"`
	Total           Amount      `json:"total"`
	Status          Status      `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	Note            string      `json:"note,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

type CreateOrderItem struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice Amount `json:"product_price"`
	Quantity     int    `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	CustomerAddress string            `json:"customer_address"`
	PaymentMethod   string            `json:"payment_method"`
	Note            string            `json:"note"`
	Items           []CreateOrderItem `json:"items"`
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the data of a successful login or registration.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type OrderStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type MonthlyRevenue struct {
	Month   string `json:"month"`
	Revenue Amount `json:"revenue"`
}

type RecentOrder struct {
	ID           int64     `json:"id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	Total        Amount    `json:"total"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Statistics struct {
	TotalRevenue   Amount             `json:"total_revenue"`
	TotalOrders    int                `json:"total_orders"`
	TotalProducts  int                `json:"total_products"`
	TotalCustomers int                `json:"total_customers"`
	OrdersByStatus []OrderStatusCount `json:"orders_by_status"`
	RevenueByMonth []MonthlyRevenue   `json:"revenue_by_month"`
	RecentOrders   []RecentOrder      `json:"recent_orders"`
}

type UploadResult struct {
	URL   string   `json:"url,omitempty"`
	URLs  []string `json:"urls,omitempty"`
	Count int      `json:"count,omitempty"`
	JSON  string   `json:"json,omitempty"`
}
