package security

import (
	"fmt"
	"log/slog"
)

// Role represents a user role
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateProduct Permission = "create_product"
	PermUpdateProduct Permission = "update_product"
	PermDeleteProduct Permission = "delete_product"
	PermReadProduct   Permission = "read_product"
	PermListProducts  Permission = "list_products"
	PermViewStats     Permission = "view_stats"
	PermManageUsers   Permission = "manage_users"
	PermViewAuditLog  Permission = "view_audit_log"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermCreateProduct,
		PermUpdateProduct,
		PermDeleteProduct,
		PermReadProduct,
		PermListProducts,
		PermViewStats,
		PermManageUsers,
		PermViewAuditLog,
	},
	RoleStaff: {
		PermCreateProduct,
		PermUpdateProduct,
		PermReadProduct,
		PermListProducts,
		PermViewStats,
	},
	RoleViewer: {
		PermReadProduct,
		PermListProducts,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role Role) []Permission {
	return RolePermissions[role]
}
