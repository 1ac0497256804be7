package models

import "time"

// DailyReport is the stock digest archived to MongoDB and sent to the owner.
type DailyReport struct {
	Date             time.Time `bson:"date" json:"date"`
	TotalItems       int       `bson:"total_items" json:"total_items"`
	TotalCost        float64   `bson:"total_cost" json:"total_cost"`
	OutOfStock       int       `bson:"out_of_stock" json:"out_of_stock"`
	ExpiringToday    []string  `bson:"expiring_today" json:"expiring_today"`
	ExpiringTomorrow []string  `bson:"expiring_tomorrow" json:"expiring_tomorrow"`
	ShoppingList     []string  `bson:"shopping_list" json:"shopping_list"`
	ShoppingCost     float64   `bson:"shopping_cost" json:"shopping_cost"`
	Currency         string    `bson:"currency" json:"currency"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
