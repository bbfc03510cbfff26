package equipment

import "time"

// Item is one catalog row. Quantity is stock on hand; units out on loan are not counted.
type Item struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ExpirationDate time.Time `json:"expiration_date"`
	Quantity       int       `json:"quantity"`
}

