package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Роли пользователей системы.
const (
	RoleClient     = "client"
	RoleMaster     = "master"
	RoleDispatcher = "dispatcher"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
)

type User struct {
	ID           uint64
	Fio          string
	Phone        null.String
	Role         string
	TgChatID     null.Int64
	PasswordHash null.String
	CreatedAt    time.Time
	UpdatedAt    null.Time
}
