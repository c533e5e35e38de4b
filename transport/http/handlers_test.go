package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/propchain/gatekeeper/adapters/hasher"
	"github.com/propchain/gatekeeper/adapters/store"
	"github.com/propchain/gatekeeper/adapters/tokenizer"
	"github.com/propchain/gatekeeper/adapters/userstore"
	"github.com/propchain/gatekeeper/internal/eth"
	"github.com/propchain/gatekeeper/ports"
	"github.com/propchain/gatekeeper/service"
)

const testPassword = "correct horse battery staple"

type capturedMail struct {
	kind  ports.NotificationKind
	token string
}

// captureNotifier records outbound tickets. Delivery runs off the request
// path, so tests wait for the kind they need rather than read a field.
type captureNotifier struct {
	ch chan capturedMail
}

func (n *captureNotifier) Send(ctx context.Context, to string, kind ports.NotificationKind, token string) error {
	n.ch <- capturedMail{kind: kind, token: token}
	return nil
}

func (n *captureNotifier) wait(t *testing.T, kind ports.NotificationKind) string {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-n.ch:
			if m.kind == kind {
				return m.token
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s notification", kind)
			return ""
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishRegistered(ctx context.Context, userID, email string) error { return nil }
func (nopPublisher) PublishLogout(ctx context.Context, userID string) error            { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *captureNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := userstore.NewMemoryUserStore()
	tickets := store.NewMemoryTicketStore()
	jwtTokenizer := tokenizer.NewJWTTokenizer([]byte("access-secret"), []byte("refresh-secret"))
	bc := hasher.NewBcryptHasher(bcrypt.MinCost)
	notifier := &captureNotifier{ch: make(chan capturedMail, 32)}

	verifier := service.NewCredentialVerifier(users, bc, eth.NewVerifier())
	issuer := service.NewTokenIssuer(jwtTokenizer, tickets, users, jwtTokenizer.RefreshTTL())
	authService := service.NewAuthService(users, tickets, verifier, issuer, bc, notifier, nopPublisher{})

	return SetupRouter(authService, jwtTokenizer), notifier
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, email string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
}

func loginUser(t *testing.T, router *gin.Engine, email string) (access, refresh string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, resp.RefreshToken
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	registerUser(t, router, "alice@example.com")

	t.Run("duplicate conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
			"email":    "alice@example.com",
			"password": testPassword,
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
			"email":    "not-an-email",
			"password": testPassword,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
			"email":    "bob@example.com",
			"password": "123",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	t.Run("success returns pair and user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": testPassword,
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp tokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "alice@example.com", resp.User.Email)
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "wrong",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
			"email": "alice@example.com",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRefreshAndLogoutEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "alice@example.com")
	access, refresh := loginUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/auth/refresh-token", gin.H{
		"refresh_token": refresh,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("old refresh token rejected after rotation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/refresh-token", gin.H{
			"refresh_token": refresh,
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout requires bearer token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/logout", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout then refresh fails", func(t *testing.T) {
		var resp struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		lw := doJSON(t, router, http.MethodPost, "/auth/logout", nil, map[string]string{
			"Authorization": "Bearer " + access,
		})
		assert.Equal(t, http.StatusOK, lw.Code)

		rw := doJSON(t, router, http.MethodPost, "/auth/refresh-token", gin.H{
			"refresh_token": resp.RefreshToken,
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	router, notifier := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	t.Run("unknown email gets the same message", func(t *testing.T) {
		known := doJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{
			"email": "alice@example.com",
		}, nil)
		unknown := doJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{
			"email": "nobody@example.com",
		}, nil)
		assert.Equal(t, http.StatusOK, known.Code)
		assert.Equal(t, http.StatusOK, unknown.Code)
		assert.Equal(t, known.Body.String(), unknown.Body.String())
	})

	ticket := notifier.wait(t, ports.NotificationResetPassword)
	require.NotEmpty(t, ticket)

	const newPassword = "an even longer passphrase 42"

	w := doJSON(t, router, http.MethodPut, "/auth/reset-password", gin.H{
		"token":        ticket,
		"new_password": newPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("ticket is single use", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/auth/reset-password", gin.H{
			"token":        ticket,
			"new_password": newPassword,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("new password logs in", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": newPassword,
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	router, notifier := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	ticket := notifier.wait(t, ports.NotificationVerifyEmail)
	require.NotEmpty(t, ticket)

	w := doJSON(t, router, http.MethodGet, "/auth/verify-email/"+ticket, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("ticket is single use", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/auth/verify-email/"+ticket, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "alice@example.com")
	access, _ := loginUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + access,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Email)

	t.Run("missing token unauthorized", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token unauthorized", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
			"Authorization": "Bearer garbage",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
