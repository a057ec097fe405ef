package permissions

import (
	"errors"

	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"gorm.io/gorm"
)

// Object-level policy for projects, issues and comments: any
// authenticated user may read, only the resource's author may mutate.
// CanModify is the write half; reads never consult it.
func CanModify(userID, authorID uint) bool {
	return userID == authorID
}

// IsProjectAuthor reports whether userID authored projectID. Returns
// false when the project does not resolve.
func IsProjectAuthor(userID, projectID uint) bool {
	var project models.Project

	if err := db.DB.Select("id", "author_id").First(&project, projectID).Error; err != nil {
		return false
	}

	return project.AuthorID == userID
}

// IsContributorOrAuthor is the creation gate: issues (and contributor
// listings) may only be created inside a project by its author or one
// of its contributors. An unresolvable project id denies rather than
// errors.
func IsContributorOrAuthor(userID, projectID uint) bool {
	var project models.Project

	if err := db.DB.Select("id", "author_id").First(&project, projectID).Error; err != nil {
		return false
	}

	if project.AuthorID == userID {
		return true
	}

	var count int64
	if err := db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return false
	}

	return count > 0
}

// IsContributorOrAuthorOfIssue applies the same gate to comment
// creation, resolving the project indirectly through the issue.
func IsContributorOrAuthorOfIssue(userID, issueID uint) bool {
	var issue models.Issue

	if err := db.DB.Select("id", "project_id").First(&issue, issueID).Error; err != nil {
		return false
	}

	return IsContributorOrAuthor(userID, issue.ProjectID)
}

// IsEligibleAssignee enforces the issue invariant: the assignee must be
// the project's author or a current contributor, on create and on every
// update.
func IsEligibleAssignee(assigneeID, projectID uint) (bool, error) {
	var project models.Project

	if err := db.DB.Select("id", "author_id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if project.AuthorID == assigneeID {
		return true, nil
	}

	var count int64
	if err := db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ?", projectID, assigneeID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
