package employees

type Employee struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type RegisterRequest struct {
	Name       string `json:"name" validate:"notblank,max=255"`
	NationalID string `json:"national_id" validate:"nationalid"`
	Role       string `json:"role" validate:"max=255"`
	Department string `json:"department" validate:"max=255"`
}

// UpdateRequest is a partial patch: nil fields are left unchanged.
type UpdateRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	NationalID *string `json:"national_id,omitempty" validate:"omitempty,nationalid"`
	Role       *string `json:"role,omitempty" validate:"omitempty,max=255"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=255"`
}

func (r UpdateRequest) Empty() bool {
	return r.Name == nil && r.NationalID == nil && r.Role == nil && r.Department == nil
}
