// Package images maps item names to illustrative stock photos by keyword.
// Matching is ordered: the first rule whose keyword appears in the name wins,
// so specific entries ("bench press") must come before generic ones ("press").
package images

import (
	"strings"

	"github.com/planforge/v1/internal/domain/plan"
)

const pexelsParams = "?auto=compress&cs=tinysrgb&w=800"

const (
	defaultFoodImage    = "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg" + pexelsParams
	defaultWorkoutImage = "https://images.pexels.com/photos/4720574/pexels-photo-4720574.jpeg" + pexelsParams
)

type imageRule struct {
	keywords []string
	url      string
}

var foodRules = []imageRule{
	{[]string{"chicken", "turkey"}, "https://images.pexels.com/photos/2338407/pexels-photo-2338407.jpeg" + pexelsParams},
	{[]string{"salmon", "fish", "tuna"}, "https://images.pexels.com/photos/2374946/pexels-photo-2374946.jpeg" + pexelsParams},
	{[]string{"tofu", "tempeh", "seitan"}, "https://images.pexels.com/photos/4518604/pexels-photo-4518604.jpeg" + pexelsParams},
	{[]string{"quinoa", "rice", "oat", "oatmeal", "grain", "bowl", "lentil"}, "https://images.pexels.com/photos/4224259/pexels-photo-4224259.jpeg" + pexelsParams},
	{[]string{"yogurt", "milk", "cheese"}, "https://images.pexels.com/photos/2992308/pexels-photo-2992308.jpeg" + pexelsParams},
	{[]string{"egg"}, "https://images.pexels.com/photos/4397063/pexels-photo-4397063.jpeg" + pexelsParams},
	{[]string{"vegetable", "broccoli", "spinach", "kale", "salad", "greens", "carrot", "pepper"}, "https://images.pexels.com/photos/6465182/pexels-photo-6465182.jpeg" + pexelsParams},
	{[]string{"almond", "nut", "peanut", "seed", "butter", "cashew", "walnut"}, "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg" + pexelsParams},
	{[]string{"fruit", "berry", "berries", "apple", "banana", "strawberry", "blueberry"}, "https://images.pexels.com/photos/1132047/pexels-photo-1132047.jpeg" + pexelsParams},
	{[]string{"potato"}, "https://images.pexels.com/photos/7456548/pexels-photo-7456548.jpeg" + pexelsParams},
	{[]string{"avocado"}, "https://images.pexels.com/photos/557659/pexels-photo-557659.jpeg" + pexelsParams},
	{[]string{"pasta"}, "https://images.pexels.com/photos/1437267/pexels-photo-1437267.jpeg" + pexelsParams},
}

var exerciseRules = []imageRule{
	{[]string{"bench press", "chest press", "incline press", "decline press"}, "https://images.pexels.com/photos/3837757/pexels-photo-3837757.jpeg" + pexelsParams},
	{[]string{"shoulder press", "overhead press", "military press", "lateral raise", "shoulder raise"}, "https://images.pexels.com/photos/5327476/pexels-photo-5327476.jpeg" + pexelsParams},
	{[]string{"push-up", "push up", "pushup"}, "https://images.pexels.com/photos/4162487/pexels-photo-4162487.jpeg" + pexelsParams},
	{[]string{"deadlift"}, "https://images.pexels.com/photos/1552103/pexels-photo-1552103.jpeg" + pexelsParams},
	{[]string{"squat", "leg press"}, "https://images.pexels.com/photos/1552106/pexels-photo-1552106.jpeg" + pexelsParams},
	{[]string{"lunge"}, "https://images.pexels.com/photos/29205145/pexels-photo-29205145.jpeg" + pexelsParams},
	{[]string{"row"}, "https://images.pexels.com/photos/6389869/pexels-photo-6389869.jpeg" + pexelsParams},
	{[]string{"plank", "bridge"}, "https://images.pexels.com/photos/6740309/pexels-photo-6740309.jpeg" + pexelsParams},
	{[]string{"run", "jog", "sprint"}, "https://images.pexels.com/photos/1954524/pexels-photo-1954524.jpeg" + pexelsParams},
	{[]string{"bike", "bicycle", "cycling", "cycle", "spin"}, "https://images.pexels.com/photos/248547/pexels-photo-248547.jpeg" + pexelsParams},
	{[]string{"swim"}, "https://images.pexels.com/photos/863988/pexels-photo-863988.jpeg" + pexelsParams},
	{[]string{"burpee"}, "https://images.pexels.com/photos/6339477/pexels-photo-6339477.jpeg" + pexelsParams},
	{[]string{"yoga"}, "https://images.pexels.com/photos/3823039/pexels-photo-3823039.jpeg" + pexelsParams},
	{[]string{"cardio", "elliptical", "stair", "climbing", "jump rope", "jumping"}, "https://images.pexels.com/photos/1552242/pexels-photo-1552242.jpeg" + pexelsParams},
	{[]string{"dumbbell", "barbell", "weight", "curl", "extension", "fly", "raise", "press", "pull"}, "https://images.pexels.com/photos/5327476/pexels-photo-5327476.jpeg" + pexelsParams},
}

// Matcher implements the outbound image resolver.
type Matcher struct{}

// NewMatcher creates a keyword matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// ImageURL returns a stock photo for the item, or the kind's default when no
// keyword matches. It never fails.
func (m *Matcher) ImageURL(kind plan.ItemKind, name string) string {
	lower := strings.ToLower(name)

	rules := foodRules
	fallback := defaultFoodImage
	if kind == plan.KindExercise {
		rules = exerciseRules
		fallback = defaultWorkoutImage
	}

	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.url
			}
		}
	}
	return fallback
}
