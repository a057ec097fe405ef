package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
)

// Mirrors the lifecycle of an outside user filing issues: rejected
// while a stranger, accepted once added as a contributor.
func TestCreateIssue_ContributorGate(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t, "user_a", 30)
	userB := createTestUser(t, "user_b", 30)
	project := createTestProject(t, userA, "Backend", types.ProjectBackend)

	r := authRouter(http.MethodPost, "/issues", userB, CreateIssue)

	body := CreateIssueRequest{
		Title:      "Crash on login",
		Tag:        types.TagBug,
		Priority:   types.PriorityHigh,
		ProjectID:  project.ID,
		AssigneeID: userB.ID,
	}

	w := performRequest(t, r, http.MethodPost, "/issues", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-contributor, got %d", w.Code)
	}

	addContributor(t, userB, project)

	w = performRequest(t, r, http.MethodPost, "/issues", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 once contributor, got %d: %s", w.Code, w.Body.String())
	}

	var response IssueSummary
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.AuthorID != userB.ID {
		t.Fatalf("author must be the requester, got %d", response.AuthorID)
	}
	if response.Status != types.StatusTodo {
		t.Fatalf("status must default to TODO, got %q", response.Status)
	}
}

func TestCreateIssue_IneligibleAssignee(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	outsider := createTestUser(t, "outsider", 30)
	project := createTestProject(t, author, "Backend", types.ProjectBackend)

	r := authRouter(http.MethodPost, "/issues", author, CreateIssue)

	w := performRequest(t, r, http.MethodPost, "/issues", CreateIssueRequest{
		Title:      "Misassigned",
		Tag:        types.TagTask,
		Priority:   types.PriorityLow,
		ProjectID:  project.ID,
		AssigneeID: outsider.ID,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for ineligible assignee, got %d", w.Code)
	}

	var count int64
	db.DB.Model(&models.Issue{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Fatalf("no issue should be created, found %d", count)
	}
}

func TestUpdateIssue_AssigneeRevalidated(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	outsider := createTestUser(t, "outsider", 30)
	project := createTestProject(t, author, "Backend", types.ProjectBackend)

	issue := models.Issue{
		Title:      "Valid",
		Tag:        types.TagBug,
		Priority:   types.PriorityMedium,
		Status:     types.StatusTodo,
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		AssigneeID: author.ID,
	}
	if err := db.DB.Create(&issue).Error; err != nil {
		t.Fatalf("failed to create issue: %v", err)
	}

	r := authRouter(http.MethodPatch, "/issues/:id", author, UpdateIssue)

	w := performRequest(t, r, http.MethodPatch, "/issues/"+itoa(issue.ID), UpdateIssueRequest{
		AssigneeID: outsider.ID,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 reassigning to outsider, got %d", w.Code)
	}

	var stored models.Issue
	db.DB.First(&stored, issue.ID)
	if stored.AssigneeID != author.ID {
		t.Fatalf("prior assignee must be preserved, got %d", stored.AssigneeID)
	}
}

func TestUpdateIssue_NonAuthorForbidden(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	contributor := createTestUser(t, "contributor", 30)
	project := createTestProject(t, author, "Backend", types.ProjectBackend)
	addContributor(t, contributor, project)

	issue := models.Issue{
		Title:      "Owned",
		Tag:        types.TagFeature,
		Priority:   types.PriorityLow,
		Status:     types.StatusTodo,
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		AssigneeID: author.ID,
	}
	if err := db.DB.Create(&issue).Error; err != nil {
		t.Fatalf("failed to create issue: %v", err)
	}

	r := authRouter(http.MethodPatch, "/issues/:id", contributor, UpdateIssue)

	w := performRequest(t, r, http.MethodPatch, "/issues/"+itoa(issue.ID), UpdateIssueRequest{
		Status: types.StatusFinished,
	})

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author update, got %d", w.Code)
	}

	// Reads stay open to any authenticated user.
	rGet := authRouter(http.MethodGet, "/issues/:id", contributor, GetIssue)
	w = performRequest(t, rGet, http.MethodGet, "/issues/"+itoa(issue.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for contributor read, got %d", w.Code)
	}
}

func TestUpdateIssue_ProjectImmutable(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	project := createTestProject(t, author, "Backend", types.ProjectBackend)
	other := createTestProject(t, author, "Frontend", types.ProjectFrontend)

	issue := models.Issue{
		Title:      "Pinned",
		Tag:        types.TagTask,
		Priority:   types.PriorityLow,
		Status:     types.StatusTodo,
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		AssigneeID: author.ID,
	}
	if err := db.DB.Create(&issue).Error; err != nil {
		t.Fatalf("failed to create issue: %v", err)
	}

	r := authRouter(http.MethodPatch, "/issues/:id", author, UpdateIssue)

	w := performRequest(t, r, http.MethodPatch, "/issues/"+itoa(issue.ID), UpdateIssueRequest{
		ProjectID: other.ID,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 moving issue between projects, got %d", w.Code)
	}
}

func TestListIssues_Filters(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author", 30)
	project := createTestProject(t, author, "Backend", types.ProjectBackend)

	issues := []models.Issue{
		{Title: "bug", Tag: types.TagBug, Priority: types.PriorityHigh, Status: types.StatusTodo, ProjectID: project.ID, AuthorID: author.ID, AssigneeID: author.ID},
		{Title: "task", Tag: types.TagTask, Priority: types.PriorityLow, Status: types.StatusFinished, ProjectID: project.ID, AuthorID: author.ID, AssigneeID: author.ID},
	}
	for i := range issues {
		if err := db.DB.Create(&issues[i]).Error; err != nil {
			t.Fatalf("failed to create issue: %v", err)
		}
	}

	r := authRouter(http.MethodGet, "/issues", author, ListIssues)

	// Priority is case-normalized to uppercase.
	w := performRequest(t, r, http.MethodGet, "/issues?priority=high", nil)

	var response []IssueSummary
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response) != 1 || response[0].Title != "bug" {
		t.Fatalf("expected only the HIGH priority issue, got %v", response)
	}

	w = performRequest(t, r, http.MethodGet, "/issues?status=FINISHED", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 || response[0].Title != "task" {
		t.Fatalf("expected only the FINISHED issue, got %v", response)
	}
}
