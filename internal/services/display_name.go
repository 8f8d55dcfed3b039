package services

import (
	"strings"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

// DefaultDisplayName is used when the record and slug yield nothing.
const DefaultDisplayName = "Undangan"

const maxDisplayNames = 2

// ResolveDisplayName derives the subject name shown in the page body and in every
// metadata tag. Circumcision invitations show the first child only; others join up to
// two names with " & ". Without names it falls back to the owner's first name and then
// to the decoded slug. The result is trimmed and never empty.
func ResolveDisplayName(inv domain.Invitation, slug string) string {
	names := childNames(inv.Children)
	if len(names) > 0 {
		if inv.Category.IsCircumcision() {
			return names[0]
		}
		return strings.Join(names, " & ")
	}
	if owner := strings.TrimSpace(inv.Owner.FirstName); owner != "" {
		return owner
	}
	if decoded := textutil.DecodeSlug(slug); decoded != "" {
		return decoded
	}
	return DefaultDisplayName
}

func childNames(children []domain.Person) []string {
	names := make([]string, 0, maxDisplayNames)
	for _, child := range children {
		name := strings.TrimSpace(child.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == maxDisplayNames {
			break
		}
	}
	return names
}
