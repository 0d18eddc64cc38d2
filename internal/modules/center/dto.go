package center

type CreateCenterRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	State       string `json:"state" binding:"required"`
	LGA         string `json:"lga" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	ContactName string `json:"contact_name"`
	Capacity    int    `json:"capacity"`
	Notes       string `json:"notes"`
}

// UpdateCenterRequest is a partial patch; nil fields are left untouched.
type UpdateCenterRequest struct {
	Name        *string `json:"name,omitempty"`
	State       *string `json:"state,omitempty"`
	LGA         *string `json:"lga,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	ContactName *string `json:"contact_name,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type ListCentersQuery struct {
	State  string `form:"state"`
	LGA    string `form:"lga"`
	Status string `form:"status"`
	Query  string `form:"q"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
