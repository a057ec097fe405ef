package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/permissions"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
}

type ProjectSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	AuthorID    uint      `json:"author"`
	CreatedTime time.Time `json:"created_time"`
}

type ProjectDetail struct {
	ProjectSummary
	Contributors []types.UserResponse `json:"contributors"`
	Issues       []IssueSummary       `json:"issues"`
}

// CreateProject stamps the requester as author and inserts the author's
// contributor row in the same transaction, so no project ever exists
// without its author among the contributors.
func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidProjectType(req.Type) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Type must be one of BACKEND, FRONTEND, IOS, ANDROID"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		AuthorID:    userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		contributor := models.Contributor{
			UserID:    userID,
			ProjectID: project.ID,
		}

		return tx.Create(&contributor).Error
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, projectSummary(project))
}

// ListProjects returns only the projects the requester contributes to
// (the author's own contributor row makes authored projects visible),
// filterable by ?type= and ordered by title.
func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.
		Joins("JOIN contributors ON contributors.project_id = projects.id AND contributors.deleted_at IS NULL").
		Where("contributors.user_id = ?", userID)

	if projectType := ctx.Query("type"); projectType != "" {
		query = query.Where("projects.type = ?", projectType)
	}

	var projects []models.Project

	if err := query.Order("projects.title").Find(&projects).Error; err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		response = append(response, projectSummary(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.
		Preload("Contributors.User").
		Preload("Issues").
		First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	detail := ProjectDetail{
		ProjectSummary: projectSummary(project),
		Contributors:   make([]types.UserResponse, 0, len(project.Contributors)),
		Issues:         make([]IssueSummary, 0, len(project.Issues)),
	}

	for _, contributor := range project.Contributors {
		detail.Contributors = append(detail.Contributors, userResponse(contributor.User))
	}

	for _, issue := range project.Issues {
		detail.Issues = append(detail.Issues, issueSummary(issue))
	}

	ctx.JSON(http.StatusOK, detail)
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if !permissions.CanModify(userID, project.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can modify it"})
		return
	}

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != "" {
		project.Title = req.Title
	}

	if req.Description != nil {
		project.Description = *req.Description
	}

	if req.Type != "" {
		if !types.IsValidProjectType(req.Type) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Type must be one of BACKEND, FRONTEND, IOS, ANDROID"})
			return
		}
		project.Type = req.Type
	}

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, projectSummary(project))
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if !permissions.CanModify(userID, project.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can delete it"})
		return
	}

	// Soft deletes do not fire the DB-level cascades, so the owned
	// rows are removed in the same transaction.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id IN (?)",
			tx.Model(&models.Issue{}).Select("id").Where("project_id = ?", project.ID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Issue{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Contributor{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func projectSummary(project models.Project) ProjectSummary {
	return ProjectSummary{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Type:        project.Type,
		AuthorID:    project.AuthorID,
		CreatedTime: project.CreatedAt,
	}
}
