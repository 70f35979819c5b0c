package catalog

import (
	"slices"
	"sort"

	"github.com/joescharf/rutina/internal/models"
)

// MaxRecommendations is the number of routines Recommend returns at most.
const MaxRecommendations = 3

const defaultWeeklyFrequency = 3

var levelOrder = []models.Level{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced}

// Recommend picks up to three routines for profile. Routines must suit the
// user's goal and be at most one level above theirs; the rest are ranked by
// shared focus areas and closeness to the weekly frequency. A nil profile
// gets the first three routines.
func Recommend(profile *models.UserProfile, routines []models.RoutinePlan) []models.RoutinePlan {
	if profile == nil {
		return head(routines, MaxRecommendations)
	}

	var picked []models.RoutinePlan
	for _, r := range routines {
		if matchesGoal(r.Goal, profile.Goal) && matchesLevel(r.Level, profile.Level) {
			picked = append(picked, r)
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return score(profile, picked[i]) > score(profile, picked[j])
	})
	return head(picked, MaxRecommendations)
}

func head(rs []models.RoutinePlan, n int) []models.RoutinePlan {
	if len(rs) > n {
		return rs[:n]
	}
	return rs
}

func matchesGoal(routine models.RoutineGoal, user models.UserGoal) bool {
	switch user {
	case "":
		return true
	case models.UserGoalHealth:
		return routine != models.RoutineGoalPerformance
	case models.UserGoalPerformance:
		return routine == models.RoutineGoalStrength || routine == models.RoutineGoalPerformance
	case models.UserGoalMuscle:
		return routine == models.RoutineGoalHypertrophy
	case models.UserGoalFatLoss:
		return routine == models.RoutineGoalFatLoss
	default:
		return true
	}
}

func matchesLevel(routine, user models.Level) bool {
	if user == "" {
		user = models.LevelBeginner
	}
	return slices.Index(levelOrder, routine) <= slices.Index(levelOrder, user)+1
}

func score(profile *models.UserProfile, r models.RoutinePlan) int {
	s := 0
	for _, area := range r.FocusAreas {
		if slices.Contains(profile.FocusAreas, area) {
			s += 2
			break
		}
	}

	freq := profile.WeeklyFrequency
	if freq == 0 {
		freq = defaultWeeklyFrequency
	}
	if diff := r.SessionsPerWeek - freq; diff >= -1 && diff <= 1 {
		s++
	}
	return s
}
