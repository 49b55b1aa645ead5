package application

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mcdiscord/internal/models"
)

var (
	ErrInvalidCode  = errors.New("link code is invalid or expired")
	ErrPlayerLinked = errors.New("player is already linked")
	ErrUserLinked   = errors.New("discord account is already linked")
)

type LinkServiceImpl struct {
	registry    *LinkRegistry
	connections *ConnectionServiceImpl
	logger      Logger
}

func NewLinkServiceImpl(registry *LinkRegistry, connections *ConnectionServiceImpl, logger Logger) *LinkServiceImpl {
	return &LinkServiceImpl{
		registry:    registry,
		connections: connections,
		logger:      logger,
	}
}

func (s *LinkServiceImpl) RequestCode(player uuid.UUID) (int, error) {
	if pair := s.registry.LookupByUUID(player); !pair.Empty() {
		return 0, fmt.Errorf("%w to discord user %d", ErrPlayerLinked, pair.UserID())
	}

	code, err := s.registry.GenerateCode(player)
	if err != nil {
		s.logger.Error("Failed to issue link code for %s: %v", player, err)
		return 0, err
	}
	return code, nil
}

func (s *LinkServiceImpl) ConfirmLink(userID int64, code int) (models.UserPair, error) {
	pair, free := s.registry.LinkFreeAccount(userID, code)
	if !free {
		return models.UserPair{}, ErrUserLinked
	}
	if pair.Empty() {
		return pair, ErrInvalidCode
	}

	s.logger.Info("Linked Discord user %d to player %s", userID, pair.Player())
	s.connections.linked(pair)
	return pair, nil
}

func (s *LinkServiceImpl) UnlinkPlayer(player uuid.UUID) models.UserPair {
	pair := s.registry.Unlink(player)
	s.afterUnlink(pair)
	return pair
}

func (s *LinkServiceImpl) UnlinkUser(userID int64) models.UserPair {
	pair := s.registry.UnlinkUser(userID)
	s.afterUnlink(pair)
	return pair
}

func (s *LinkServiceImpl) LookupPlayer(player uuid.UUID) models.UserPair {
	return s.registry.LookupByUUID(player)
}

func (s *LinkServiceImpl) LookupUser(userID int64) models.UserPair {
	return s.registry.LookupByUserID(userID)
}

func (s *LinkServiceImpl) Save() error {
	return s.registry.Persist()
}

func (s *LinkServiceImpl) afterUnlink(pair models.UserPair) {
	if pair.Empty() {
		return
	}
	s.logger.Info("Unlinked Discord user %d from player %s", pair.UserID(), pair.Player())
	s.connections.unlinked(pair)
}
