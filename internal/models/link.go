package models

import "github.com/google/uuid"

// ConfirmedLink ties a Discord user to a Minecraft player.
type ConfirmedLink struct {
	UserID int64     `json:"user_id"`
	Player uuid.UUID `json:"player"`
}

// UserPair is an optional ConfirmedLink. The zero value is empty.
type UserPair struct {
	link  ConfirmedLink
	valid bool
}

func NewUserPair(userID int64, player uuid.UUID) UserPair {
	return UserPair{
		link:  ConfirmedLink{UserID: userID, Player: player},
		valid: true,
	}
}

func (p UserPair) Empty() bool {
	return !p.valid
}

func (p UserPair) Link() (ConfirmedLink, bool) {
	return p.link, p.valid
}

func (p UserPair) UserID() int64 {
	return p.link.UserID
}

func (p UserPair) Player() uuid.UUID {
	return p.link.Player
}
