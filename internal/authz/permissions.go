package authz

import (
	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

// Сценарии бота, вход в которые проверяется по роли.
const (
	FlowCatalogEdit   = "catalog.edit"
	FlowRequestCreate = "request.create"
	FlowRequestList   = "request.list"
	FlowRequestAssign = "request.assign"
	FlowCatalogExport = "catalog.export"
	FlowLinkIssue     = "user.link"
)

var flowRoles = map[string]map[string]bool{
	FlowCatalogEdit: {
		entities.RoleAdmin: true,
	},
	FlowCatalogExport: {
		entities.RoleAdmin:   true,
		entities.RoleManager: true,
	},
	FlowRequestCreate: {
		entities.RoleClient:     true,
		entities.RoleDispatcher: true,
		entities.RoleAdmin:      true,
	},
	FlowRequestList: {
		entities.RoleClient:     true,
		entities.RoleMaster:     true,
		entities.RoleDispatcher: true,
		entities.RoleManager:    true,
		entities.RoleAdmin:      true,
	},
	FlowRequestAssign: {
		entities.RoleDispatcher: true,
		entities.RoleManager:    true,
		entities.RoleAdmin:      true,
	},
	FlowLinkIssue: {
		entities.RoleAdmin: true,
	},
}

// CheckFlow проверяет, разрешён ли пользователю вход в сценарий.
// Отказ происходит до любого перехода состояния, сессия не создаётся.
func CheckFlow(user *entities.User, flow string) error {
	roles, ok := flowRoles[flow]
	if !ok {
		return apperrors.ErrForbidden
	}
	if user == nil || !roles[user.Role] {
		return apperrors.ErrForbidden
	}
	return nil
}
