package plan

import (
	"encoding/json"
	"strings"
)

// Severity grades an injury. It only influences the curated severity screening
// rules; tag matching ignores it.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Injury is a user-reported injury. Clients may send either a bare string
// ("knee") or an object ({"name": "knee", "severity": "severe"}); a bare string
// defaults to moderate severity.
type Injury struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
}

// UnmarshalJSON accepts both the string and the object wire forms.
func (i *Injury) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		i.Name = name
		i.Severity = SeverityModerate
		return nil
	}

	type injuryObject struct {
		Name     string   `json:"name"`
		Severity Severity `json:"severity"`
	}
	var obj injuryObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	i.Name = obj.Name
	i.Severity = obj.Severity
	if i.Severity == "" {
		i.Severity = SeverityModerate
	}
	switch i.Severity {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return nil
	default:
		return ErrInvalidSeverity
	}
}

// UserConstraints is the resolved constraint set for one plan request: the
// user's allergies and injuries, normalized for matching.
type UserConstraints struct {
	Allergies []string
	Injuries  []Injury
}

// NewUserConstraints normalizes raw user input into a constraint set.
// Allergy entries are free text and may themselves be comma-separated.
func NewUserConstraints(allergies []string, injuries []Injury) UserConstraints {
	c := UserConstraints{}
	for _, raw := range allergies {
		for _, token := range SplitList(raw) {
			c.Allergies = append(c.Allergies, token)
		}
	}
	for _, inj := range injuries {
		name := NormalizeName(inj.Name)
		if name == "" {
			continue
		}
		severity := inj.Severity
		if severity == "" {
			severity = SeverityModerate
		}
		c.Injuries = append(c.Injuries, Injury{Name: name, Severity: severity})
	}
	return c
}

// SplitList splits user-supplied free text on commas, trimming and
// normalizing each token and dropping empties.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if token := NormalizeName(part); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// InjuryNames returns the normalized injury names.
func (c UserConstraints) InjuryNames() []string {
	names := make([]string, 0, len(c.Injuries))
	for _, inj := range c.Injuries {
		names = append(names, inj.Name)
	}
	return names
}

// Empty reports whether the user has no active constraints at all.
func (c UserConstraints) Empty() bool {
	return len(c.Allergies) == 0 && len(c.Injuries) == 0
}

// FirstHazard returns the first constraint token that exactly matches one of the
// item's hazard tags, comparing case- and space-normalized. Meals are checked
// against allergies, exercises against injuries. Substring matching is
// deliberately not performed: a tag counts as a hit only when it equals a
// constraint token after normalization.
func (c UserConstraints) FirstHazard(item ConsumableItem) (string, bool) {
	var active []string
	switch item.Kind {
	case KindMeal:
		active = c.Allergies
	case KindExercise:
		active = c.InjuryNames()
	default:
		return "", false
	}

	for _, tag := range item.HazardTags {
		normalized := NormalizeName(tag)
		for _, constraint := range active {
			if normalized == NormalizeName(constraint) {
				return constraint, true
			}
		}
	}
	return "", false
}

// IsSafe reports whether the item carries no hazard for this constraint set.
// The item must be structurally valid first.
func (c UserConstraints) IsSafe(item ConsumableItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}
	_, hit := c.FirstHazard(item)
	return !hit, nil
}
