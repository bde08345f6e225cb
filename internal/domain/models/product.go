package models

// Product — внешняя сущность каталога; ядро заказов трогает только счётчик stock
type Product struct {
	ID      string `json:"id"`
	BrandID string `json:"brand_id"`
	Stock   int    `json:"stock"`
}
