package application

import (
	"sync"

	"github.com/google/uuid"

	"mcdiscord/internal/models"
)

// ConnectionServiceImpl tracks which players are on the game server and keeps
// the connection role of their linked Discord users in sync.
type ConnectionServiceImpl struct {
	mu       sync.RWMutex
	online   map[uuid.UUID]string
	assigner RoleAssigner

	registry *LinkRegistry
	logger   Logger
}

func NewConnectionServiceImpl(registry *LinkRegistry, logger Logger) *ConnectionServiceImpl {
	return &ConnectionServiceImpl{
		online:   make(map[uuid.UUID]string),
		registry: registry,
		logger:   logger,
	}
}

func (s *ConnectionServiceImpl) SetRoleAssigner(assigner RoleAssigner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigner = assigner
}

func (s *ConnectionServiceImpl) PlayerJoined(player uuid.UUID, name string) {
	s.mu.Lock()
	s.online[player] = name
	s.mu.Unlock()

	pair := s.registry.LookupByUUID(player)
	if pair.Empty() {
		return
	}
	s.addRole(pair)
}

func (s *ConnectionServiceImpl) PlayerQuit(player uuid.UUID) {
	s.mu.Lock()
	delete(s.online, player)
	s.mu.Unlock()

	pair := s.registry.LookupByUUID(player)
	if pair.Empty() {
		return
	}
	s.removeRole(pair)
}

func (s *ConnectionServiceImpl) IsOnline(player uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[player]
	return ok
}

func (s *ConnectionServiceImpl) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.online)
}

// ClearRoles takes the connection role from every linked player still online
// and forgets the online set. Called on shutdown, when join and quit events
// stop arriving.
func (s *ConnectionServiceImpl) ClearRoles() int {
	s.mu.Lock()
	online := make([]uuid.UUID, 0, len(s.online))
	for player := range s.online {
		online = append(online, player)
	}
	s.online = make(map[uuid.UUID]string)
	s.mu.Unlock()

	cleared := 0
	for _, player := range online {
		pair := s.registry.LookupByUUID(player)
		if pair.Empty() {
			continue
		}
		s.removeRole(pair)
		cleared++
	}
	return cleared
}

func (s *ConnectionServiceImpl) linked(pair models.UserPair) {
	if s.IsOnline(pair.Player()) {
		s.addRole(pair)
	}
}

func (s *ConnectionServiceImpl) unlinked(pair models.UserPair) {
	s.removeRole(pair)
}

func (s *ConnectionServiceImpl) roleAssigner() RoleAssigner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assigner
}

func (s *ConnectionServiceImpl) addRole(pair models.UserPair) {
	assigner := s.roleAssigner()
	if assigner == nil {
		return
	}
	if err := assigner.AddConnectionRole(pair.UserID()); err != nil {
		s.logger.Warn("Failed to give connection role to %d: %v", pair.UserID(), err)
	}
}

func (s *ConnectionServiceImpl) removeRole(pair models.UserPair) {
	assigner := s.roleAssigner()
	if assigner == nil {
		return
	}
	if err := assigner.RemoveConnectionRole(pair.UserID()); err != nil {
		s.logger.Warn("Failed to remove connection role from %d: %v", pair.UserID(), err)
	}
}
