package service

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/pkg/security"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *security.TokenMaker) {
	t.Helper()

	argon := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	tokens := security.NewTokenMaker("test-secret", 7*24*time.Hour)

	return NewUserService(newTestDB(t), argon, tokens), tokens
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("register then login", func(t *testing.T) {
		s, tokens := newUserService(t)

		reg, err := s.Register(ctx, " Dev@Example.com ", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "dev@example.com", reg.User.Email)
		assert.NotEmpty(t, reg.User.ID)

		claims, err := tokens.Parse(reg.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, claims.Subject)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

		login, err := s.Login(ctx, "dev@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, reg.User, login.User)

		user, err := s.Authenticate(ctx, login.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, user.ID)

		var stored model.User
		require.NoError(t, s.db.First(&stored, "id = ?", reg.User.ID).Error)
		assert.NotContains(t, stored.PasswordHash, "hunter22")
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, _ := newUserService(t)

		_, err := s.Register(ctx, "dev@example.com", "hunter22")
		require.NoError(t, err)

		_, err = s.Register(ctx, "DEV@example.com", "another1")
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		var count int64
		require.NoError(t, s.db.Model(&model.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("register validation", func(t *testing.T) {
		s, _ := newUserService(t)

		cases := map[string][2]string{
			"missing email":    {"", "hunter22"},
			"missing password": {"dev@example.com", ""},
			"bad email":        {"dev", "hunter22"},
			"short password":   {"dev@example.com", "123"},
		}

		for name, c := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := s.Register(ctx, c[0], c[1])
				assert.True(t, apperr.Is(err, apperr.KindValidation), err)
			})
		}
	})

	t.Run("login failures are uniform", func(t *testing.T) {
		s, _ := newUserService(t)

		_, err := s.Register(ctx, "dev@example.com", "hunter22")
		require.NoError(t, err)

		_, wrongPassword := s.Login(ctx, "dev@example.com", "hunter23")
		_, unknownEmail := s.Login(ctx, "nobody@example.com", "hunter22")

		assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("authenticate rejects bad tokens and deleted users", func(t *testing.T) {
		s, tokens := newUserService(t)

		_, err := s.Authenticate(ctx, "garbage")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

		ghost, err := tokens.Generate("ghost")
		require.NoError(t, err)

		_, err = s.Authenticate(ctx, ghost)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("current user", func(t *testing.T) {
		s, _ := newUserService(t)

		reg, err := s.Register(ctx, "dev@example.com", "hunter22")
		require.NoError(t, err)

		me, err := s.Current(ctx, reg.User.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PublicUser{ID: reg.User.ID, Email: "dev@example.com"}, *me)

		_, err = s.Current(ctx, "missing")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("db error is unexpected", func(t *testing.T) {
		s, _ := newUserService(t)
		require.NoError(t, s.db.Migrator().DropTable(&model.User{}))

		_, err := s.Register(ctx, "dev@example.com", "hunter22")
		require.Error(t, err)

		_, typed := apperr.As(err)
		assert.False(t, typed)
	})
}
