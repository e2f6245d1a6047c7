package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServiceForTest() (AuthService, *fakeUserRepo) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	userRepo := newFakeUserRepo()
	return NewAuthService(userRepo, clock), userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Nickname:  "ivan",
		Email:     "  Ivan@Example.com ",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ivan@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	logged, err := svc.Login(ctx, LoginInput{Email: "ivan@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "A@Example.com", Password: "battery-staple"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "b@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetUserByID(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	found, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
