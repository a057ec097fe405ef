package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func TestCreateProject_AuthorBecomesContributor(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)

	r := authRouter(http.MethodPost, "/projects", author, CreateProject)

	w := performRequest(t, r, http.MethodPost, "/projects", CreateProjectRequest{
		Title: "API rewrite",
		Type:  types.ProjectBackend,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var response ProjectSummary
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var count int64
	db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ?", response.ID, author.ID).
		Count(&count)

	if count != 1 {
		t.Fatalf("expected the author's contributor row to exist, found %d rows", count)
	}
}

func TestCreateProject_InvalidType(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)

	r := authRouter(http.MethodPost, "/projects", author, CreateProject)

	w := performRequest(t, r, http.MethodPost, "/projects", CreateProjectRequest{
		Title: "Mystery",
		Type:  "DESKTOP",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid type, got %d", w.Code)
	}
}

func TestListProjects_ContributorVisibility(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	outsider := createTestUser(t, "outsider", 30)
	project := createTestProject(t, author, "Secret", types.ProjectBackend)

	r := authRouter(http.MethodGet, "/projects", outsider, ListProjects)

	w := performRequest(t, r, http.MethodGet, "/projects", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response []ProjectSummary
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response) != 0 {
		t.Fatalf("outsider should see no projects, got %d", len(response))
	}

	addContributor(t, outsider, project)

	w = performRequest(t, r, http.MethodGet, "/projects", nil)

	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response) != 1 || response[0].ID != project.ID {
		t.Fatalf("contributor should see the project, got %v", response)
	}
}

func TestListProjects_TypeFilterAndOrder(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	createTestProject(t, author, "Zeta", types.ProjectBackend)
	createTestProject(t, author, "Alpha", types.ProjectBackend)
	createTestProject(t, author, "Mobile", types.ProjectIOS)

	r := authRouter(http.MethodGet, "/projects", author, ListProjects)

	w := performRequest(t, r, http.MethodGet, "/projects?type=BACKEND", nil)

	var response []ProjectSummary
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response) != 2 {
		t.Fatalf("expected 2 BACKEND projects, got %d", len(response))
	}

	if response[0].Title != "Alpha" || response[1].Title != "Zeta" {
		t.Fatalf("expected projects ordered by title, got %q then %q", response[0].Title, response[1].Title)
	}
}

func TestUpdateProject_NonAuthorForbidden(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	contributor := createTestUser(t, "contributor", 30)
	project := createTestProject(t, author, "Locked", types.ProjectBackend)
	addContributor(t, contributor, project)

	r := authRouter(http.MethodPatch, "/projects/:id", contributor, UpdateProject)

	w := performRequest(t, r, http.MethodPatch, "/projects/"+itoa(project.ID), UpdateProjectRequest{Title: "Hijacked"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	var stored models.Project
	db.DB.First(&stored, project.ID)
	if stored.Title != "Locked" {
		t.Fatalf("project title must be unchanged, got %q", stored.Title)
	}
}

func TestDeleteProject_CascadesOwnedRows(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	project := createTestProject(t, author, "Doomed", types.ProjectBackend)

	issue := models.Issue{
		Title:      "leftover",
		Tag:        types.TagBug,
		Priority:   types.PriorityLow,
		Status:     types.StatusTodo,
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		AssigneeID: author.ID,
	}
	if err := db.DB.Create(&issue).Error; err != nil {
		t.Fatalf("failed to create issue: %v", err)
	}

	comment := models.Comment{Description: "note", IssueID: issue.ID, AuthorID: author.ID}
	if err := db.DB.Create(&comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}

	r := authRouter(http.MethodDelete, "/projects/:id", author, DeleteProject)

	w := performRequest(t, r, http.MethodDelete, "/projects/"+itoa(project.ID), nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	var issues, contributors, comments int64
	db.DB.Model(&models.Issue{}).Where("project_id = ?", project.ID).Count(&issues)
	db.DB.Model(&models.Contributor{}).Where("project_id = ?", project.ID).Count(&contributors)
	db.DB.Model(&models.Comment{}).Where("issue_id = ?", issue.ID).Count(&comments)

	if issues != 0 || contributors != 0 || comments != 0 {
		t.Fatalf("expected cascade delete, found issues=%d contributors=%d comments=%d", issues, contributors, comments)
	}
}
