package dtos

type AssignRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}
