package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/permissions"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type CreateCommentRequest struct {
	Description string `json:"description" binding:"required"`
	IssueID     uint   `json:"issue" binding:"required"`
}

type UpdateCommentRequest struct {
	Description string `json:"description" binding:"required"`
}

type CommentResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	IssueID     uint      `json:"issue"`
	AuthorID    uint      `json:"author"`
	CreatedTime time.Time `json:"created_time"`
}

// CreateComment requires contributor-or-author standing on the project
// the parent issue belongs to; the author is always the requester.
func CreateComment(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !permissions.IsContributorOrAuthorOfIssue(requesterID, req.IssueID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You must be the author or a contributor of the project"})
		return
	}

	comment := models.Comment{
		Description: req.Description,
		IssueID:     req.IssueID,
		AuthorID:    requesterID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	var issue models.Issue
	if err := db.DB.Select("id", "project_id").First(&issue, comment.IssueID).Error; err == nil {
		BroadcastProjectEvent(issue.ProjectID, "comment", "created", comment.IssueID)
	}

	ctx.JSON(http.StatusCreated, commentResponse(comment))
}

// ListComments returns comments ordered by creation time ascending,
// filterable by ?issue=.
func ListComments(ctx *gin.Context) {
	query := db.DB.Model(&models.Comment{})

	if issueID := ctx.Query("issue"); issueID != "" {
		query = query.Where("issue_id = ?", issueID)
	}

	var comments []models.Comment

	if err := query.Order("created_at ASC").Find(&comments).Error; err != nil {
		log.Printf("Failed to list comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetComment(ctx *gin.Context) {
	commentID, err := uuid.Parse(ctx.Param("id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := uuid.Parse(ctx.Param("id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if !permissions.CanModify(requesterID, comment.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the comment author can modify it"})
		return
	}

	var req UpdateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment.Description = req.Description

	if err := db.DB.Save(&comment).Error; err != nil {
		log.Printf("Failed to update comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := uuid.Parse(ctx.Param("id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if !permissions.CanModify(requesterID, comment.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the comment author can delete it"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func commentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:          comment.ID,
		Description: comment.Description,
		IssueID:     comment.IssueID,
		AuthorID:    comment.AuthorID,
		CreatedTime: comment.CreatedAt,
	}
}
