package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/config"
	"github.com/Raj-kansagra/InstaFood/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *mockUserRepository, secret string) *AuthService {
	return NewAuthService(users, config.AuthConfig{
		JWTSecret:  secret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger.Discard())
}

func TestSignUpThenSignIn(t *testing.T) {
	users := newMockUserRepository()
	sut := newAuthService(users, "secret")
	ctx := context.Background()

	res, err := sut.SignUp(ctx, SignUpInput{Name: "Asha", Email: " Asha@Example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.NotEqual(t, "hunter22", res.User.Password)

	id, err := sut.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)

	in, err := sut.SignIn(ctx, "asha@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, in.User.ID)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	sut := newAuthService(newMockUserRepository(), "secret")
	ctx := context.Background()

	_, err := sut.SignUp(ctx, SignUpInput{Name: "A", Email: "a@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = sut.SignUp(ctx, SignUpInput{Name: "B", Email: "a@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSignUp_Validation(t *testing.T) {
	sut := newAuthService(newMockUserRepository(), "secret")

	for _, in := range []SignUpInput{
		{Name: "", Email: "a@example.com", Password: "password"},
		{Name: "A", Email: "not-an-email", Password: "password"},
		{Name: "A", Email: "a@example.com", Password: "123"},
		{Name: "A", Email: "a@example.com", Password: strings.Repeat("p", 73)},
	} {
		_, err := sut.SignUp(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidSignUp)
	}
}

func TestSignUp_PasswordAtBcryptLimit(t *testing.T) {
	sut := newAuthService(newMockUserRepository(), "secret")
	ctx := context.Background()
	password := strings.Repeat("p", 72)

	_, err := sut.SignUp(ctx, SignUpInput{Name: "A", Email: "long@example.com", Password: password})
	require.NoError(t, err)

	_, err = sut.SignIn(ctx, "long@example.com", password)
	assert.NoError(t, err)
}

func TestSignIn_WrongPasswordOrUnknownUser(t *testing.T) {
	sut := newAuthService(newMockUserRepository(), "secret")
	ctx := context.Background()

	_, err := sut.SignUp(ctx, SignUpInput{Name: "A", Email: "a@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = sut.SignIn(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = sut.SignIn(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_RejectsForeignAndExpiredTokens(t *testing.T) {
	users := newMockUserRepository()
	ours := newAuthService(users, "secret")
	theirs := newAuthService(users, "other-secret")

	res, err := theirs.SignUp(context.Background(), SignUpInput{Name: "A", Email: "a@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = ours.Verify(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ours.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ours.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := ours.issue(res.User.ID)
	require.NoError(t, err)
	ours.now = time.Now
	_, err = ours.Verify(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherSigningMethods(t *testing.T) {
	sut := newAuthService(newMockUserRepository(), "secret")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "65a000000000000000000001"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = sut.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
