package types

// Project types
const (
	ProjectBackend  = "BACKEND"
	ProjectFrontend = "FRONTEND"
	ProjectIOS      = "IOS"
	ProjectAndroid  = "ANDROID"
)

// Issue tags
const (
	TagBug     = "BUG"
	TagFeature = "FEATURE"
	TagTask    = "TASK"
)

// Issue priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Issue statuses
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusFinished   = "FINISHED"
)

var (
	ProjectTypes    = []string{ProjectBackend, ProjectFrontend, ProjectIOS, ProjectAndroid}
	IssueTags       = []string{TagBug, TagFeature, TagTask}
	IssuePriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	IssueStatuses   = []string{StatusTodo, StatusInProgress, StatusFinished}
)

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func IsValidProjectType(value string) bool { return contains(ProjectTypes, value) }
func IsValidIssueTag(value string) bool    { return contains(IssueTags, value) }
func IsValidPriority(value string) bool    { return contains(IssuePriorities, value) }
func IsValidStatus(value string) bool      { return contains(IssueStatuses, value) }
