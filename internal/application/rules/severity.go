package rules

import (
	"strings"

	"github.com/planforge/v1/internal/domain/plan"
)

// severityScreen is a curated keyword rule that blocks exercise patterns
// outright when an injury is reported at a given severity. These fire before
// the AI safety check and are not subject to the exact-match tag contract:
// a severe injury is a hard stop for whole movement families, not just
// catalogued items.
type severityScreen struct {
	injury   string
	severity plan.Severity
	keywords []string
}

var severityScreens = []severityScreen{
	{
		injury:   "knee",
		severity: plan.SeveritySevere,
		keywords: []string{"squat", "lunge", "leg press", "leg", "calf"},
	},
	{
		injury:   "wrist",
		severity: plan.SeveritySevere,
		keywords: []string{"push-up", "push up", "bench", "press"},
	},
}

// screenSeverity reports whether the named exercise trips a severity rule for
// any of the user's injuries, returning the injury name that blocked it.
func screenSeverity(exerciseName string, injuries []plan.Injury) (string, bool) {
	name := plan.NormalizeName(exerciseName)
	for _, inj := range injuries {
		injuryName := plan.NormalizeName(inj.Name)
		for _, screen := range severityScreens {
			if screen.injury != injuryName || screen.severity != inj.Severity {
				continue
			}
			for _, keyword := range screen.keywords {
				if strings.Contains(name, keyword) {
					return inj.Name, true
				}
			}
		}
	}
	return "", false
}
