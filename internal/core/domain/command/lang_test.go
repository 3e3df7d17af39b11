package command

import (
	"context"
	"errors"
	"irabot/internal/core/domain"
	"irabot/internal/core/language"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLocalizer struct {
	mock.Mock
}

func (m *MockLocalizer) Get(userID int64) *language.Bundle {
	return m.Called(userID).Get(0).(*language.Bundle)
}

func (m *MockLocalizer) Set(ctx context.Context, userID int64, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *MockLocalizer) Codes() []string {
	return m.Called().Get(0).([]string)
}

func TestLang_Run(t *testing.T) {
	spanish := language.NewBundle("es", "Español", map[language.Key]string{
		language.LanguageSet: "✅ Idioma cambiado a %1.",
	})

	tests := []struct {
		name      string
		text      string
		setupMock func(ml *MockLocalizer)
		wantReply string
		wantErr   bool
	}{
		{
			name: "lists languages without argument",
			text: "/lang",
			setupMock: func(ml *MockLocalizer) {
				ml.On("Codes").Return([]string{"en", "es", "hi", "id"})
			},
			wantReply: "Available languages: en, es, hi, id\nUse: /lang en",
		},
		{
			name: "unknown language",
			text: "/lang xx",
			setupMock: func(ml *MockLocalizer) {
				ml.On("Set", mock.Anything, int64(5), "xx").Return(&domain.UnknownLanguageError{Code: "xx"})
			},
			wantReply: "❌ Language file not found.",
		},
		{
			name: "confirms in the new language",
			text: "/lang es",
			setupMock: func(ml *MockLocalizer) {
				ml.On("Set", mock.Anything, int64(5), "es").Return(nil)
				ml.On("Get", int64(5)).Return(spanish)
			},
			wantReply: "✅ Idioma cambiado a es.",
		},
		{
			name: "store failure is a command failure",
			text: "/lang es",
			setupMock: func(ml *MockLocalizer) {
				ml.On("Set", mock.Anything, int64(5), "es").Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ml := new(MockLocalizer)
			tt.setupMock(ml)

			msg := &domain.Message{ID: 1, ChatID: 2, SenderID: 5, Text: tt.text}
			mockSender := new(MockSender)
			if tt.wantReply != "" {
				mockSender.On("SendMessageReply", mock.Anything, msg, tt.wantReply).Return(9, nil)
			}

			err := NewLang(ml, "/").Run(t.Context(), invocation(t, mockSender, msg, "lang"))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			ml.AssertExpectations(t)
			mockSender.AssertExpectations(t)
		})
	}
}
