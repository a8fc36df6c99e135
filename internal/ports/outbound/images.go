package outbound

import "github.com/planforge/v1/internal/domain/plan"

// ImageResolver maps an item name to an illustrative stock photo URL. It is
// deterministic and best-effort: an unmatched name returns the kind's default
// image, never an error.
type ImageResolver interface {
	ImageURL(kind plan.ItemKind, name string) string
}
