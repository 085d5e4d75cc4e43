package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/users-api/internal/auth"
	"github.com/hongminglow/users-api/internal/models"
	"github.com/hongminglow/users-api/internal/storage/sqlite"
	"github.com/hongminglow/users-api/internal/users"
)

type envelope struct {
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

type loginData struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := sqlite.NewUserStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)

	svc := users.NewService(store, users.WithBcryptCost(bcrypt.MinCost))
	mux := http.NewServeMux()
	NewUserHandler(svc).Register(mux)
	NewAuthHandler(svc, auth.NewTokenManager("test-secret", "users-api", time.Hour)).Register(mux)
	NewHealthHandler(time.Now(), store).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func andi() map[string]string {
	return map[string]string{
		"username": "andi17x",
		"email":    "andi@gmail.com",
		"password": "adminpassword12",
		"profile":  "Editor",
	}
}

func createUser(t *testing.T, mux http.Handler, body map[string]string) models.User {
	t.Helper()
	status, env := do(t, mux, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusOK, status, env.Description)
	require.Equal(t, "Successfully created data!", env.Description)
	var user models.User
	decodeData(t, env, &user)
	return user
}

func TestCreateThenGet(t *testing.T) {
	mux := newTestMux(t)
	created := createUser(t, mux, andi())
	require.NotZero(t, created.ID)

	status, env := do(t, mux, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully fetched users data by id!", env.Description)

	var got models.User
	decodeData(t, env, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "andi17x", got.Username)
	assert.Equal(t, "andi@gmail.com", got.Email)
	assert.Equal(t, "Editor", got.Profile)
	assert.NotContains(t, string(env.Data), "password")
}

func TestGetMissingUser(t *testing.T) {
	mux := newTestMux(t)
	status, env := do(t, mux, http.MethodGet, "/api/users/12345", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "user not found", env.Description)
}

func TestInvalidID(t *testing.T) {
	mux := newTestMux(t)
	for _, path := range []string{"/api/users/abc", "/api/users/0", "/api/users/-4"} {
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			t.Run(method+" "+path, func(t *testing.T) {
				status, env := do(t, mux, method, path, `{"name":"x"}`)
				assert.Equal(t, http.StatusBadRequest, status)
				assert.Equal(t, errInvalidID.Error(), env.Description)
			})
		}
	}
}

func TestListReflectsCreatesAndDeletes(t *testing.T) {
	mux := newTestMux(t)

	status, env := do(t, mux, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully fetched all data!", env.Description)
	var list []models.User
	decodeData(t, env, &list)
	assert.Empty(t, list)

	var ids []int64
	for i := 0; i < 3; i++ {
		body := andi()
		body["username"] = fmt.Sprintf("user%d", i)
		body["email"] = fmt.Sprintf("user%d@example.com", i)
		ids = append(ids, createUser(t, mux, body).ID)
	}
	status, _ = do(t, mux, http.MethodDelete, fmt.Sprintf("/api/users/%d", ids[1]), nil)
	require.Equal(t, http.StatusOK, status)

	_, env = do(t, mux, http.MethodGet, "/api/users", nil)
	decodeData(t, env, &list)
	require.Len(t, list, 2)
	assert.Equal(t, ids[0], list[0].ID)
	assert.Equal(t, ids[2], list[1].ID)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	mux := newTestMux(t)
	created := createUser(t, mux, andi())
	path := fmt.Sprintf("/api/users/%d", created.ID)

	status, env := do(t, mux, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully deleted data!", env.Description)
	assert.Empty(t, env.Data)

	status, _ = do(t, mux, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, mux, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPatchUpdatesOnlySuppliedFields(t *testing.T) {
	mux := newTestMux(t)
	created := createUser(t, mux, andi())
	path := fmt.Sprintf("/api/users/%d", created.ID)

	status, env := do(t, mux, http.MethodPatch, path, map[string]string{"email": "andi@work.example"})
	require.Equal(t, http.StatusOK, status, env.Description)
	assert.Equal(t, "Successfully updated data!", env.Description)

	_, env = do(t, mux, http.MethodGet, path, nil)
	var got models.User
	decodeData(t, env, &got)
	assert.Equal(t, "andi@work.example", got.Email)
	assert.Equal(t, created.Username, got.Username)
	assert.Equal(t, created.Profile, got.Profile)
	assert.Equal(t, created.Name, got.Name)

	// The password was not part of the patch, so the old one still works.
	status, _ = do(t, mux, http.MethodPost, "/api/users/login", map[string]string{
		"username": "andi17x",
		"password": "adminpassword12",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestPatchMissingUser(t *testing.T) {
	mux := newTestMux(t)
	status, _ := do(t, mux, http.MethodPatch, "/api/users/999", map[string]string{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPatchEmptyBody(t *testing.T) {
	mux := newTestMux(t)
	created := createUser(t, mux, andi())
	status, _ := do(t, mux, http.MethodPatch, fmt.Sprintf("/api/users/%d", created.ID), `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateRejectsBadInput(t *testing.T) {
	mux := newTestMux(t)
	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"username":`},
		{"unknown field", `{"username":"andi17x","nombreusuario":"andi17x"}`},
		{"trailing data", `{"username":"andi17x"} {}`},
		{"missing email", map[string]string{"username": "andi17x", "password": "adminpassword12"}},
		{"short password", map[string]string{"username": "andi17x", "email": "andi@gmail.com", "password": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, mux, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, env.Description)
		})
	}
}

func TestCreateConflict(t *testing.T) {
	mux := newTestMux(t)
	createUser(t, mux, andi())

	status, env := do(t, mux, http.MethodPost, "/api/users", andi())
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username or email already exists", env.Description)
}

func TestLogin(t *testing.T) {
	mux := newTestMux(t)
	created := createUser(t, mux, andi())

	status, env := do(t, mux, http.MethodPost, "/api/users/login", map[string]string{
		"username": "andi17x",
		"password": "adminpassword12",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully found user data!", env.Description)
	var data loginData
	decodeData(t, env, &data)
	assert.Equal(t, created.ID, data.User.ID)
	assert.NotEmpty(t, strings.TrimSpace(data.Token))

	for _, creds := range []map[string]string{
		{"username": "andi17x", "password": "wrongpassword"},
		{"username": "ghost", "password": "adminpassword12"},
	} {
		status, env = do(t, mux, http.MethodPost, "/api/users/login", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid credentials", env.Description)
	}

	status, _ = do(t, mux, http.MethodPost, "/api/users/login", map[string]string{"username": "andi17x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t)
	status, env := do(t, mux, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	var data healthStatus
	decodeData(t, env, &data)
	assert.Equal(t, "ok", data.Status)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthDatabaseDown(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), downPinger{}).Register(mux)

	status, env := do(t, mux, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	var data healthStatus
	decodeData(t, env, &data)
	assert.Equal(t, "unavailable", data.Status)
}

type brokenService struct {
	UserService
}

func (brokenService) List(context.Context) ([]models.User, error) {
	return nil, errors.New("pool exhausted")
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	mux := http.NewServeMux()
	NewUserHandler(brokenService{}).Register(mux)

	status, env := do(t, mux, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to fetch users", env.Description)
}
