package entity

import "time"

// Product is the single persistent entity of the shop.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	PhotoID     string // Telegram file_id of the product photo
	Quantity    int
	CreatedAt   time.Time
}
