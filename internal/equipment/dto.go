package equipment

import "time"

type RegisterRequest struct {
	Name           string `json:"name" validate:"notblank,max=255"`
	Description    string `json:"description"`
	ExpirationDate string `json:"expiration_date" validate:"date"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
}

type RegisterResult struct {
	ID     int64 `json:"id"`
	Merged bool  `json:"merged"`
}

// UpdateRequest is a partial patch: nil fields are left unchanged.
type UpdateRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Description    *string `json:"description,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty" validate:"omitempty,date"`
	Quantity       *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}

func (r UpdateRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.ExpirationDate == nil && r.Quantity == nil
}

// patch is UpdateRequest after parsing, ready for the store.
type patch struct {
	Name           *string
	Description    *string
	ExpirationDate *time.Time
	Quantity       *int
}

type ImportRowResult struct {
	Line   int    `json:"line"`
	Name   string `json:"name,omitempty"`
	ID     int64  `json:"id,omitempty"`
	Merged bool   `json:"merged,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ImportResult struct {
	Created int               `json:"created"`
	Merged  int               `json:"merged"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`
}
