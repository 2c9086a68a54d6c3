package tabs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/promptctl/internal/reconcile"
)

const unknownTabReferenceTemplateConstant = "%w: %s"

// resolveTabReference accepts a tab identifier or a 1-based position in the listing.
func resolveTabReference(listings []reconcile.TabListing, reference string) (reconcile.TabListing, error) {
	trimmedReference := strings.TrimSpace(reference)
	for _, listing := range listings {
		if listing.ID == trimmedReference {
			return listing, nil
		}
	}
	position, parseError := strconv.Atoi(trimmedReference)
	if parseError == nil && position >= 1 && position <= len(listings) {
		return listings[position-1], nil
	}
	return reconcile.TabListing{}, fmt.Errorf(unknownTabReferenceTemplateConstant, reconcile.ErrTabNotFound, trimmedReference)
}

func lookupTab(engine *reconcile.Engine, reference string) (reconcile.TabListing, error) {
	listings, listError := engine.ListTabs()
	if listError != nil {
		return reconcile.TabListing{}, listError
	}
	return resolveTabReference(listings, reference)
}
