package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Peanuts", "peanuts"},
		{"  Tree   Nuts  ", "tree nuts"},
		{"shellfish", "shellfish"},
		{"\tknee \n", "knee"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"peanuts", "shellfish"}, SplitList("Peanuts, Shellfish"))
	assert.Equal(t, []string{"dairy"}, SplitList(" dairy "))
	assert.Nil(t, SplitList(", ,"))
	assert.Nil(t, SplitList(""))
}

func TestInjuryUnmarshalJSON(t *testing.T) {
	t.Run("bare string defaults to moderate", func(t *testing.T) {
		var inj Injury
		require.NoError(t, json.Unmarshal([]byte(`"knee"`), &inj))
		assert.Equal(t, "knee", inj.Name)
		assert.Equal(t, SeverityModerate, inj.Severity)
	})

	t.Run("object form keeps severity", func(t *testing.T) {
		var inj Injury
		require.NoError(t, json.Unmarshal([]byte(`{"name":"wrist","severity":"severe"}`), &inj))
		assert.Equal(t, "wrist", inj.Name)
		assert.Equal(t, SeveritySevere, inj.Severity)
	})

	t.Run("object without severity defaults to moderate", func(t *testing.T) {
		var inj Injury
		require.NoError(t, json.Unmarshal([]byte(`{"name":"back"}`), &inj))
		assert.Equal(t, SeverityModerate, inj.Severity)
	})

	t.Run("unknown severity is rejected", func(t *testing.T) {
		var inj Injury
		err := json.Unmarshal([]byte(`{"name":"knee","severity":"catastrophic"}`), &inj)
		assert.ErrorIs(t, err, ErrInvalidSeverity)
	})
}

func TestNewUserConstraints(t *testing.T) {
	c := NewUserConstraints(
		[]string{"Peanuts, Shellfish", "  DAIRY "},
		[]Injury{
			{Name: "  Knee ", Severity: SeveritySevere},
			{Name: "wrist"},
			{Name: "   "},
		},
	)

	assert.Equal(t, []string{"peanuts", "shellfish", "dairy"}, c.Allergies)
	require.Len(t, c.Injuries, 2)
	assert.Equal(t, Injury{Name: "knee", Severity: SeveritySevere}, c.Injuries[0])
	// Missing severity fills in as moderate, blank names are dropped.
	assert.Equal(t, Injury{Name: "wrist", Severity: SeverityModerate}, c.Injuries[1])
}

func TestFirstHazard(t *testing.T) {
	c := NewUserConstraints([]string{"peanuts"}, []Injury{{Name: "knee", Severity: SeverityModerate}})

	t.Run("meal matches allergy tag", func(t *testing.T) {
		hazard, hit := c.FirstHazard(ConsumableItem{
			Name: "Peanut Butter Toast", Kind: KindMeal, HazardTags: []string{"peanuts", "gluten"},
		})
		assert.True(t, hit)
		assert.Equal(t, "peanuts", hazard)
	})

	t.Run("matching is exact not substring", func(t *testing.T) {
		nut := NewUserConstraints([]string{"nut"}, nil)
		_, hit := nut.FirstHazard(ConsumableItem{
			Name: "Peanut Butter Toast", Kind: KindMeal, HazardTags: []string{"peanuts"},
		})
		assert.False(t, hit)
	})

	t.Run("comparison normalizes case and spacing", func(t *testing.T) {
		shellfish := NewUserConstraints([]string{" SHELL  Fish "}, nil)
		_, hit := shellfish.FirstHazard(ConsumableItem{
			Name: "Shrimp Stir Fry", Kind: KindMeal, HazardTags: []string{"shell fish"},
		})
		assert.True(t, hit)
	})

	t.Run("meals ignore injuries and exercises ignore allergies", func(t *testing.T) {
		_, hit := c.FirstHazard(ConsumableItem{
			Name: "Knee Soup", Kind: KindMeal, HazardTags: []string{"knee"},
		})
		assert.False(t, hit)

		_, hit = c.FirstHazard(ConsumableItem{
			Name: "Peanut Crunches", Kind: KindExercise, HazardTags: []string{"peanuts"},
		})
		assert.False(t, hit)
	})

	t.Run("exercise matches injury tag", func(t *testing.T) {
		hazard, hit := c.FirstHazard(ConsumableItem{
			Name: "Squats", Kind: KindExercise, HazardTags: []string{"knee"},
		})
		assert.True(t, hit)
		assert.Equal(t, "knee", hazard)
	})
}

func TestIsSafe(t *testing.T) {
	c := NewUserConstraints([]string{"dairy"}, nil)

	safe, err := c.IsSafe(ConsumableItem{Name: "Oatmeal", Kind: KindMeal})
	require.NoError(t, err)
	assert.True(t, safe)

	safe, err = c.IsSafe(ConsumableItem{Name: "Greek Yogurt", Kind: KindMeal, HazardTags: []string{"dairy"}})
	require.NoError(t, err)
	assert.False(t, safe)

	_, err = c.IsSafe(ConsumableItem{Kind: KindMeal})
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestEmpty(t *testing.T) {
	assert.True(t, UserConstraints{}.Empty())
	assert.False(t, NewUserConstraints([]string{"soy"}, nil).Empty())
	assert.False(t, NewUserConstraints(nil, []Injury{{Name: "ankle"}}).Empty())
}

func TestItemValidate(t *testing.T) {
	assert.NoError(t, ConsumableItem{Name: "Walking", Kind: KindExercise}.Validate())
	assert.ErrorIs(t, ConsumableItem{Name: " ", Kind: KindMeal}.Validate(), ErrMissingName)
	assert.ErrorIs(t, ConsumableItem{Name: "Lunch"}.Validate(), ErrMissingKind)
	assert.ErrorIs(t, ConsumableItem{Name: "Lunch", Kind: "snack"}.Validate(), ErrUnknownKind)
}
