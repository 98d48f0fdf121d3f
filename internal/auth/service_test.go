package auth_test

import (
	"context"
	"os"
	"testing"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	userinmemory "taskManager/internal/repository/user/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

func newService() *auth.Service {
	return auth.NewService(
		userinmemory.NewUserStorage(),
		auth.NewJWTManager(testJWTConfig(time.Hour)),
	)
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	registered, err := svc.Register(ctx, "John Doe", "john@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", registered.Email)
	assert.NotEqual(t, "password", registered.PasswordHash)

	token, err := svc.Login(ctx, "john@example.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.ID)
	assert.Equal(t, registered.Email, principal.Email)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Register(ctx, "John Doe", "john@example.com", "password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Impostor", "john@example.com", "password")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Register(ctx, "John Doe", "john@example.com", "password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "john@example.com", password: "wrong-password"},
		{name: "unknown email", email: "nobody@example.com", password: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestService_AuthenticateInvalidToken(t *testing.T) {
	svc := newService()

	_, err := svc.Authenticate(context.Background(), "1|abcdefghij1234567890ABCDEFGHIJabcdefghij")
	assert.Error(t, err)
}

func TestService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	registered, err := svc.Register(ctx, "John Doe", "john@example.com", "password")
	require.NoError(t, err)

	found, err := svc.CurrentUser(ctx, registered.Principal())
	require.NoError(t, err)
	assert.Equal(t, registered.ID, found.ID)
	assert.Equal(t, "john@example.com", found.Email)
}
