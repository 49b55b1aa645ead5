package application

import (
	"github.com/google/uuid"

	"mcdiscord/internal/models"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// RoleAssigner grants and revokes the guild role shown while a linked player
// is connected to the game server.
type RoleAssigner interface {
	AddConnectionRole(userID int64) error
	RemoveConnectionRole(userID int64) error
}

type LinkService interface {
	RequestCode(player uuid.UUID) (int, error)
	ConfirmLink(userID int64, code int) (models.UserPair, error)
	UnlinkPlayer(player uuid.UUID) models.UserPair
	UnlinkUser(userID int64) models.UserPair
	LookupPlayer(player uuid.UUID) models.UserPair
	LookupUser(userID int64) models.UserPair
	Save() error
}

type ConnectionService interface {
	PlayerJoined(player uuid.UUID, name string)
	PlayerQuit(player uuid.UUID)
	IsOnline(player uuid.UUID) bool
	OnlineCount() int
	ClearRoles() int
	SetRoleAssigner(assigner RoleAssigner)
}

type ExportService interface {
	ExportLinks() ([]byte, error)
}

type Service struct {
	Links       LinkService
	Connections ConnectionService
	Export      ExportService
}

func NewService(registry *LinkRegistry, logger Logger) *Service {
	connections := NewConnectionServiceImpl(registry, logger)
	return &Service{
		Links:       NewLinkServiceImpl(registry, connections, logger),
		Connections: connections,
		Export:      NewExportServiceImpl(registry),
	}
}
