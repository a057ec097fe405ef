package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/permissions"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type CreateContributorRequest struct {
	UserID    uint `json:"user" binding:"required"`
	ProjectID uint `json:"project" binding:"required"`
}

type ContributorResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user"`
	Username  string `json:"username"`
	ProjectID uint   `json:"project"`
}

// CreateContributor adds a user to a project. Only the project's author
// may do this; both referenced ids must resolve; the composite unique
// index backs up the duplicate pre-check under concurrency.
func CreateContributor(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateContributorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Payload must contain 'project' and 'user' IDs"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var user models.User

	if err := db.DB.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if !permissions.CanModify(requesterID, project.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can add contributors"})
		return
	}

	var count int64
	if err := db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).
		Count(&count).Error; err != nil {
		log.Printf("Failed to check existing contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if count > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This user is already a contributor to the project"})
		return
	}

	contributor := models.Contributor{
		UserID:    user.ID,
		ProjectID: project.ID,
	}

	if err := db.DB.Create(&contributor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "This user is already a contributor to the project"})
			return
		}
		log.Printf("Failed to create contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add contributor"})
		return
	}

	ctx.JSON(http.StatusCreated, ContributorResponse{
		ID:        contributor.ID,
		UserID:    user.ID,
		Username:  user.Username,
		ProjectID: project.ID,
	})
}

// ListContributors lists membership rows, filterable by ?project=.
func ListContributors(ctx *gin.Context) {
	query := db.DB.Preload("User")

	if projectID := ctx.Query("project"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var contributors []models.Contributor

	if err := query.Find(&contributors).Error; err != nil {
		log.Printf("Failed to list contributors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contributors"})
		return
	}

	response := make([]ContributorResponse, 0, len(contributors))
	for _, contributor := range contributors {
		response = append(response, ContributorResponse{
			ID:        contributor.ID,
			UserID:    contributor.UserID,
			Username:  contributor.User.Username,
			ProjectID: contributor.ProjectID,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteContributor removes a membership row. The project author's own
// row is never removable, and only the author may remove anyone.
func DeleteContributor(ctx *gin.Context) {
	requesterID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contributorID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contributor models.Contributor

	if err := db.DB.Preload("Project").First(&contributor, contributorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contributor not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contributor"})
		}
		return
	}

	if !permissions.CanModify(requesterID, contributor.Project.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can remove contributors"})
		return
	}

	if contributor.UserID == contributor.Project.AuthorID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "The project author cannot be removed from contributors"})
		return
	}

	if err := db.DB.Delete(&contributor).Error; err != nil {
		log.Printf("Failed to delete contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove contributor"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
