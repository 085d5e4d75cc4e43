package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/users-api/internal/auth"
	"github.com/hongminglow/users-api/internal/storage/postgres"
	"github.com/hongminglow/users-api/internal/users"
)

// TestUsersIntegration exercises create/login/delete against a live Postgres DB.
func TestUsersIntegration(t *testing.T) {
	if os.Getenv("RUN_USERS_INTEGRATION") != "true" {
		t.Skip("set RUN_USERS_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), "users-api", mustGetTTL(t))
	svc := users.NewService(store)

	mux := http.NewServeMux()
	NewUserHandler(svc).Register(mux)
	NewAuthHandler(svc, tokens).Register(mux)

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())
	body := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
		"profile":  "Editor",
	}
	created := createUser(t, mux, body)
	if created.Username != username {
		t.Fatalf("create mismatch: got %+v", created)
	}

	status, env := do(t, mux, http.MethodPost, "/api/users/login", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d (%s)", status, env.Description)
	}
	var data loginData
	decodeData(t, env, &data)
	if data.User.ID != created.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", created.ID, data.User.ID)
	}
	if strings.TrimSpace(data.Token) == "" {
		t.Fatal("login response missing token")
	}

	status, _ = do(t, mux, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}

	t.Logf("created user %s (id=%d), logged in and deleted it", username, created.ID)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := strings.TrimSpace(os.Getenv("JWT_TTL_MINUTES"))
	if minutesStr == "" {
		return time.Hour
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
