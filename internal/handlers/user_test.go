package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/auth"
	"github.com/taskforge-dev/taskforge/internal/models"
)

func initJWT(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("failed to init JWT secret: %v", err)
	}
}

func TestCreateUser_AgeBoundary(t *testing.T) {
	setupTestDB(t)
	initJWT(t)

	r := anonRouter(http.MethodPost, "/users", CreateUser)

	w := performRequest(t, r, http.MethodPost, "/users", CreateUserRequest{
		Username: "too_young",
		Email:    "young@example.com",
		Password: "password123",
		Age:      15,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for age 15, got %d", w.Code)
	}

	w = performRequest(t, r, http.MethodPost, "/users", CreateUserRequest{
		Username: "old_enough",
		Email:    "sixteen@example.com",
		Password: "password123",
		Age:      16,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for age 16, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	if err := db.DB.Where("username = ?", "old_enough").First(&stored).Error; err != nil {
		t.Fatalf("expected user to be persisted: %v", err)
	}
	if stored.PasswordHash == "password123" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	setupTestDB(t)
	initJWT(t)
	createTestUser(t, "alice", 30)

	r := anonRouter(http.MethodPost, "/users", CreateUser)

	w := performRequest(t, r, http.MethodPost, "/users", CreateUserRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
		Age:      25,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", w.Code)
	}
}

func TestListUsers_AgeFilter(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "young", 17)
	createTestUser(t, "adult", 30)
	requester := createTestUser(t, "requester", 40)

	r := authRouter(http.MethodGet, "/users", requester, ListUsers)

	w := performRequest(t, r, http.MethodGet, "/users?age_gt=18&age_lt=35", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response) != 1 || response[0]["username"] != "adult" {
		t.Fatalf("expected only 'adult' in response, got %v", response)
	}
}

func TestUpdateUser_OtherAccountForbidden(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner", 30)
	intruder := createTestUser(t, "intruder", 30)

	r := authRouter(http.MethodPatch, "/users/:id", intruder, UpdateUser)

	w := performRequest(t, r, http.MethodPatch, "/users/"+itoa(owner.ID), UpdateUserRequest{Username: "hijacked"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDeleteUser_SelfOnly(t *testing.T) {
	setupTestDB(t)
	victim := createTestUser(t, "victim", 30)
	intruder := createTestUser(t, "intruder", 30)

	r := authRouter(http.MethodDelete, "/users/:id", intruder, DeleteUser)

	w := performRequest(t, r, http.MethodDelete, "/users/"+itoa(victim.ID), nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting another account, got %d", w.Code)
	}

	r = authRouter(http.MethodDelete, "/users/:id", victim, DeleteUser)

	w = performRequest(t, r, http.MethodDelete, "/users/"+itoa(victim.ID), nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting own account, got %d", w.Code)
	}
}
