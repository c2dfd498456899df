package extract

import "strings"

// Page type tags assigned to slides in the analysis request. The tags
// drive downstream template selection, so they must stay stable.
const (
	PageTypeTrends          = "trends"
	PageTypeLeaderboard     = "leaderboard"
	PageTypeHealthCheck     = "health_check"
	PageTypeHabitFormation  = "habit_formation"
	PageTypeLicensePriority = "license_priority"
	PageTypeGeneral         = "general"
)

// ClassifyPage tags a page by keywords in its display name. The first
// matching rule wins; anything unrecognized is general.
func ClassifyPage(displayName string) string {
	name := strings.ToLower(displayName)
	switch {
	case strings.Contains(name, "trend") || strings.Contains(name, "over time"):
		return PageTypeTrends
	case strings.Contains(name, "leaderboard") || strings.Contains(name, "top"):
		return PageTypeLeaderboard
	case strings.Contains(name, "health") || strings.Contains(name, "overview"):
		return PageTypeHealthCheck
	case strings.Contains(name, "habit") || strings.Contains(name, "frequency"):
		return PageTypeHabitFormation
	case strings.Contains(name, "license") || strings.Contains(name, "priority"):
		return PageTypeLicensePriority
	default:
		return PageTypeGeneral
	}
}
