package service

import (
	"fmt"

	"github.com/spf13/viper"
)

// Ban tells why a sender may not use the bot at all.
type Ban int

const (
	NotBanned Ban = iota
	UserBanned
	ChatBanned
)

// Authorizer answers who may use the bot and who may use admin-only commands. The lists are
// static configuration and read-only after construction.
type Authorizer struct {
	privileged  map[int64]struct{}
	bannedUsers map[int64]struct{}
	bannedChats map[int64]struct{}
}

// NewAuthorizer reads the identity lists from the bot configuration.
func NewAuthorizer() (*Authorizer, error) {
	var admins, bannedUsers, bannedChats []int64

	for key, target := range map[string]*[]int64{
		"bot.admin_ids":       &admins,
		"bot.banned_user_ids": &bannedUsers,
		"bot.banned_chat_ids": &bannedChats,
	} {
		if err := viper.UnmarshalKey(key, target); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
	}

	return NewStaticAuthorizer(admins, bannedUsers, bannedChats), nil
}

func NewStaticAuthorizer(admins, bannedUsers, bannedChats []int64) *Authorizer {
	return &Authorizer{
		privileged:  toSet(admins),
		bannedUsers: toSet(bannedUsers),
		bannedChats: toSet(bannedChats),
	}
}

func (a *Authorizer) IsPrivileged(userID int64) bool {
	_, ok := a.privileged[userID]
	return ok
}

// Banned checks the sender before the chat, so a banned user in a banned chat gets the user notice.
func (a *Authorizer) Banned(userID, chatID int64) Ban {
	if _, ok := a.bannedUsers[userID]; ok {
		return UserBanned
	}

	if _, ok := a.bannedChats[chatID]; ok {
		return ChatBanned
	}

	return NotBanned
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}
