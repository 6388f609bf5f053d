package option

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// FindAllByIDs returns the options that exist; unknown ids are simply absent.
	FindAllByIDs(ctx context.Context, ids []string) ([]model.ProductOption, error)
}

// Resolve splits the requested ids into the options found and the ids that are missing.
// Missing ids keep their request order and are reported once each.
func Resolve(found []model.ProductOption, requested []string) (map[string]model.ProductOption, []string) {
	byID := make(map[string]model.ProductOption, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	var missing []string
	seen := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return byID, missing
}
