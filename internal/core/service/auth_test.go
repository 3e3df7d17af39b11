package service

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizer(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr bool
		admin   int64
	}{
		{
			name: "loads identity lists",
			setup: func() {
				viper.Set("bot.admin_ids", []int64{1, 2, 3})
				viper.Set("bot.banned_user_ids", []int64{4})
				viper.Set("bot.banned_chat_ids", []int64{-100})
			},
			admin: 2,
		},
		{
			name: "invalid type returns error",
			setup: func() {
				viper.Set("bot.admin_ids", "not a slice")
			},
			wantErr: true,
		},
		{
			name:  "missing lists are empty",
			setup: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper between tests
			viper.Reset()
			tt.setup()
			auth, err := NewAuthorizer()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, auth)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, auth)
			if tt.admin != 0 {
				assert.True(t, auth.IsPrivileged(tt.admin))
			}
			assert.False(t, auth.IsPrivileged(99))
		})
	}

	viper.Reset()
}

func TestAuthorizer_IsPrivileged(t *testing.T) {
	auth := NewStaticAuthorizer([]int64{123, 456}, nil, nil)

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{name: "listed user", userID: 123, want: true},
		{name: "other listed user", userID: 456, want: true},
		{name: "unlisted user", userID: 789, want: false},
		{name: "zero id", userID: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.IsPrivileged(tt.userID))
		})
	}
}

func TestAuthorizer_Banned(t *testing.T) {
	auth := NewStaticAuthorizer(nil, []int64{7}, []int64{-100})

	tests := []struct {
		name   string
		userID int64
		chatID int64
		want   Ban
	}{
		{name: "allowed", userID: 1, chatID: 1, want: NotBanned},
		{name: "banned user", userID: 7, chatID: 1, want: UserBanned},
		{name: "banned chat", userID: 1, chatID: -100, want: ChatBanned},
		{name: "user ban wins over chat ban", userID: 7, chatID: -100, want: UserBanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Banned(tt.userID, tt.chatID))
		})
	}
}
