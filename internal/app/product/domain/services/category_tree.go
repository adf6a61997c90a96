package services

import (
	"sort"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// CategoryTree resolves descendant sets over a flat parent-pointer category list.
// It is rebuilt from a full category scan for every resolution.
type CategoryTree struct {
	byID     map[string]*domain.Category
	bySlug   map[string]*domain.Category
	children map[string][]string
}

// NewCategoryTree indexes categories by id, slug and parent.
func NewCategoryTree(categories []*domain.Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[string]*domain.Category, len(categories)),
		bySlug:   make(map[string]*domain.Category, len(categories)),
		children: make(map[string][]string),
	}
	for _, c := range categories {
		t.byID[c.ID] = c
		t.bySlug[c.Slug] = c
		if c.ParentID != nil && *c.ParentID != "" {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
		}
	}
	for parent := range t.children {
		sort.Strings(t.children[parent])
	}
	return t
}

// BySlug returns the category with the given slug.
func (t *CategoryTree) BySlug(slug string) (*domain.Category, bool) {
	c, ok := t.bySlug[slug]
	return c, ok
}

// Name returns the category name, or "" for unknown ids.
func (t *CategoryTree) Name(id string) string {
	if c, ok := t.byID[id]; ok {
		return c.Name
	}
	return ""
}

// DescendantsOfSlug is DescendantsOf for a category slug.
func (t *CategoryTree) DescendantsOfSlug(slug string) []string {
	c, ok := t.bySlug[slug]
	if !ok {
		return nil
	}
	return t.DescendantsOf(c.ID)
}

// DescendantsOf returns id followed by every category reachable below it,
// breadth first. Unknown ids yield an empty result. The visited set makes
// cyclic parent graphs terminate; each category appears once.
func (t *CategoryTree) DescendantsOf(id string) []string {
	if _, ok := t.byID[id]; !ok {
		return nil
	}

	visited := map[string]bool{id: true}
	out := []string{id}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range t.children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// DescendantSet is DescendantsOfSlug as a membership set.
func (t *CategoryTree) DescendantSet(slug string) map[string]struct{} {
	ids := t.DescendantsOfSlug(slug)
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
