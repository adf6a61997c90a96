package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// maxNumberedSlugs bounds the base-2 ... base-N probe before falling back to a random suffix.
const maxNumberedSlugs = 20

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// SlugGenerator derives unique product slugs.
type SlugGenerator struct {
	newSuffix func() string
}

// NewSlugGenerator creates a SlugGenerator with uuid-based fallback suffixes.
func NewSlugGenerator() *SlugGenerator {
	return &SlugGenerator{
		newSuffix: func() string { return uuid.NewString()[:8] },
	}
}

// Generate returns Slugify(name) if free, otherwise the first free of
// name-2 ... name-20, otherwise name-<8 hex chars>. For a given set of taken
// slugs the result is deterministic up to the final fallback.
func (g *SlugGenerator) Generate(ctx context.Context, name string, exists SlugExistsFunc) (string, error) {
	base := domain.Slugify(name)

	taken, err := exists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if !taken {
		return base, nil
	}

	for n := 2; n <= maxNumberedSlugs; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	candidate := base + "-" + g.newSuffix()
	taken, err = exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return "", domain.ErrSlugTaken
	}
	return candidate, nil
}
