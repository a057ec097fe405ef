package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/permissions"
	"github.com/taskforge-dev/taskforge/internal/services"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Tag         string `json:"tag" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
	Status      string `json:"status"`
	ProjectID   uint   `json:"project" binding:"required"`
	AssigneeID  uint   `json:"assignee" binding:"required"`
}

type UpdateIssueRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Tag         string  `json:"tag"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	ProjectID   uint    `json:"project"`
	AssigneeID  uint    `json:"assignee"`
}

type IssueSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	ProjectID   uint      `json:"project"`
	AuthorID    uint      `json:"author"`
	AssigneeID  uint      `json:"assignee"`
	CreatedTime time.Time `json:"created_time"`
}

type IssueDetail struct {
	IssueSummary
	Author   types.UserResponse `json:"author_detail"`
	Assignee types.UserResponse `json:"assignee_detail"`
	Comments []CommentResponse  `json:"comments"`
}

const assigneeErrMsg = "Assignee must be the author or a contributor of the project"

// CreateIssue files an issue against a project. The requester must hold
// contributor-or-author standing on the project, the author field is
// always the requester regardless of the payload, and the assignee must
// themselves be the project author or a contributor.
func CreateIssue(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateIssueRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidIssueTag(req.Tag) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Tag must be one of BUG, FEATURE, TASK"})
		return
	}

	if !types.IsValidPriority(req.Priority) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be one of LOW, MEDIUM, HIGH"})
		return
	}

	if req.Status == "" {
		req.Status = types.StatusTodo
	}

	if !types.IsValidStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of TODO, IN_PROGRESS, FINISHED"})
		return
	}

	if !permissions.IsContributorOrAuthor(requesterID, req.ProjectID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You must be the author or a contributor of the project"})
		return
	}

	var assignee models.User

	if err := db.DB.First(&assignee, req.AssigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignee"})
		}
		return
	}

	eligible, err := permissions.IsEligibleAssignee(assignee.ID, req.ProjectID)

	if err != nil {
		log.Printf("Failed to check assignee eligibility: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !eligible {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": assigneeErrMsg})
		return
	}

	issue := models.Issue{
		Title:       req.Title,
		Description: req.Description,
		Tag:         req.Tag,
		Priority:    req.Priority,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		AuthorID:    requesterID,
		AssigneeID:  assignee.ID,
	}

	if err := db.DB.Create(&issue).Error; err != nil {
		log.Printf("Failed to create issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	BroadcastProjectEvent(issue.ProjectID, "issue", "created", issue.ID)
	services.NotifyIssueEvent(issue, "created")

	ctx.JSON(http.StatusCreated, issueSummary(issue))
}

// ListIssues supports ?project=, ?tag=, ?status=, ?assignee= and
// ?priority= filters; priority is case-normalized to uppercase.
func ListIssues(ctx *gin.Context) {
	query := db.DB.Model(&models.Issue{})

	if projectID := ctx.Query("project"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if tag := ctx.Query("tag"); tag != "" {
		query = query.Where("tag = ?", tag)
	}

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if assignee := ctx.Query("assignee"); assignee != "" {
		query = query.Where("assignee_id = ?", assignee)
	}

	if priority := ctx.Query("priority"); priority != "" {
		query = query.Where("priority = ?", strings.ToUpper(priority))
	}

	var issues []models.Issue

	if err := query.Find(&issues).Error; err != nil {
		log.Printf("Failed to list issues: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	response := make([]IssueSummary, 0, len(issues))
	for _, issue := range issues {
		response = append(response, issueSummary(issue))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetIssue(ctx *gin.Context) {
	issueID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.
		Preload("Author").
		Preload("Assignee").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.created_at ASC")
		}).
		First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	detail := IssueDetail{
		IssueSummary: issueSummary(issue),
		Author:       userResponse(issue.Author),
		Assignee:     userResponse(issue.Assignee),
		Comments:     make([]CommentResponse, 0, len(issue.Comments)),
	}

	for _, comment := range issue.Comments {
		detail.Comments = append(detail.Comments, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, detail)
}

// UpdateIssue is restricted to the issue's author. The parent project
// is immutable; the assignee invariant is revalidated with the
// incoming assignee (or the existing one when absent from the patch).
func UpdateIssue(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if !permissions.CanModify(requesterID, issue.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the issue author can modify it"})
		return
	}

	var req UpdateIssueRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ProjectID != 0 && req.ProjectID != issue.ProjectID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "The project of an issue cannot be changed"})
		return
	}

	if req.Tag != "" {
		if !types.IsValidIssueTag(req.Tag) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Tag must be one of BUG, FEATURE, TASK"})
			return
		}
		issue.Tag = req.Tag
	}

	if req.Priority != "" {
		if !types.IsValidPriority(req.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be one of LOW, MEDIUM, HIGH"})
			return
		}
		issue.Priority = req.Priority
	}

	if req.Status != "" {
		if !types.IsValidStatus(req.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of TODO, IN_PROGRESS, FINISHED"})
			return
		}
		issue.Status = req.Status
	}

	if req.Title != "" {
		issue.Title = req.Title
	}

	if req.Description != nil {
		issue.Description = *req.Description
	}

	assigneeID := issue.AssigneeID
	if req.AssigneeID != 0 {
		assigneeID = req.AssigneeID
	}

	eligible, err := permissions.IsEligibleAssignee(assigneeID, issue.ProjectID)

	if err != nil {
		log.Printf("Failed to check assignee eligibility: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !eligible {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": assigneeErrMsg})
		return
	}

	issue.AssigneeID = assigneeID

	if err := db.DB.Save(&issue).Error; err != nil {
		log.Printf("Failed to update issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	BroadcastProjectEvent(issue.ProjectID, "issue", "updated", issue.ID)
	services.NotifyIssueEvent(issue, "updated")

	ctx.JSON(http.StatusOK, issueSummary(issue))
}

func DeleteIssue(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if !permissions.CanModify(requesterID, issue.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the issue author can delete it"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", issue.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&issue).Error
	})

	if err != nil {
		log.Printf("Failed to delete issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}

	BroadcastProjectEvent(issue.ProjectID, "issue", "deleted", issue.ID)
	services.NotifyIssueEvent(issue, "deleted")

	ctx.Status(http.StatusNoContent)
}

func issueSummary(issue models.Issue) IssueSummary {
	return IssueSummary{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Tag:         issue.Tag,
		Priority:    issue.Priority,
		Status:      issue.Status,
		ProjectID:   issue.ProjectID,
		AuthorID:    issue.AuthorID,
		AssigneeID:  issue.AssigneeID,
		CreatedTime: issue.CreatedAt,
	}
}
