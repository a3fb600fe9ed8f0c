package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t, Config{})

	rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
		Email: "Alice@Example.com", Name: "Alice", Password: "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[sessionResponse](t, rec)
	assert.NotEmpty(t, got.Token)
	assert.Equal(t, "alice@example.com", got.User.Email)
	assert.Equal(t, "Alice", got.User.Name)

	t.Run("duplicate email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email: "alice@example.com", Password: "other",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email: "bob@example.com",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t, Config{})

	rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
		Email: "alice@example.com", Password: "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("success", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email: "alice@example.com", Password: "s3cret",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[sessionResponse](t, rec)
		assert.NotEmpty(t, got.Token)
	})

	// Wrong password and unknown email must be indistinguishable.
	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email: "alice@example.com", Password: "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email: "nobody@example.com", Password: "s3cret",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("response does not leak account existence", func(t *testing.T) {
		f := newFixture(t, Config{})

		rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email: "alice@example.com", Password: "s3cret",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		known := f.do(t, http.MethodPost, "/auth/forgot-password", "", forgotPasswordRequest{
			Email: "alice@example.com",
		})
		unknown := f.do(t, http.MethodPost, "/auth/forgot-password", "", forgotPasswordRequest{
			Email: "nobody@example.com",
		})

		require.Equal(t, http.StatusOK, known.Code)
		require.Equal(t, http.StatusOK, unknown.Code)
		assert.Equal(t, known.Body.String(), unknown.Body.String())
	})

	t.Run("token exposed only with debug flag", func(t *testing.T) {
		f := newFixture(t, Config{ExposeResetTokens: true})

		rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email: "alice@example.com", Password: "s3cret",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodPost, "/auth/forgot-password", "", forgotPasswordRequest{
			Email: "alice@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[forgotPasswordResponse](t, rec)
		assert.NotEmpty(t, got.ResetToken)
	})
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, Config{ExposeResetTokens: true})

	rec := f.do(t, http.MethodPost, "/auth/register", "", registerRequest{
		Email: "alice@example.com", Password: "old-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/forgot-password", "", forgotPasswordRequest{
		Email: "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[forgotPasswordResponse](t, rec).ResetToken
	require.NotEmpty(t, token)

	t.Run("invalid token", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/reset-password", "", resetPasswordRequest{
			Token: "bogus", NewPassword: "new-pass",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/reset-password", "", resetPasswordRequest{
			Token: token, NewPassword: "new-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		// Old password no longer works, new one does.
		rec = f.do(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email: "alice@example.com", Password: "old-pass",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = f.do(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email: "alice@example.com", Password: "new-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
