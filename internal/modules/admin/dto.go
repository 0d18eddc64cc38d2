package admin

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ListQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type ActivityQuery struct {
	Limit int `form:"limit"`
}
