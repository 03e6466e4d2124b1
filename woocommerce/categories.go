package woocommerce

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"intcomex-sync/internal/types"
)

// CategoryResolver resolves category names to store ids, creating missing
// categories on the fly. The cache is scoped to one resolver instance (one
// sync run); each unique (name, parent) pair hits the network at most once.
//
// Not safe for concurrent callers on the same (name, parent) pair: a miss
// raced from two goroutines would create the category twice. The sync run is
// single-threaded, so no locking is done here.
type CategoryResolver struct {
	client *Client
	logger types.Logger
	cache  map[string]int
	titler cases.Caser
}

// NewCategoryResolver creates a resolver with an empty cache.
func NewCategoryResolver(client *Client, logger types.Logger) *CategoryResolver {
	return &CategoryResolver{
		client: client,
		logger: logger,
		cache:  make(map[string]int),
		titler: cases.Title(language.Spanish),
	}
}

// Resolve returns the id of the category with the given name under parent
// (0 for root), creating it when absent. An empty or "nan" name resolves to
// 0 with no remote call.
func (r *CategoryResolver) Resolve(ctx context.Context, name string, parent int) (int, error) {
	name = r.titler.String(strings.TrimSpace(name))
	if name == "" || strings.EqualFold(name, "nan") {
		return 0, nil
	}

	key := strings.ToLower(name) + "|" + strconv.Itoa(parent)
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	found, err := r.client.SearchCategories(ctx, name)
	if err != nil {
		return 0, err
	}
	for _, cat := range found {
		if strings.EqualFold(cat.Name, name) && cat.Parent == parent {
			r.cache[key] = cat.ID
			return cat.ID, nil
		}
	}

	r.logger.Infof("Creating category %q (parent %d)", name, parent)
	created, err := r.client.CreateCategory(ctx, name, parent)
	if err != nil {
		return 0, err
	}
	r.cache[key] = created.ID
	return created.ID, nil
}

// ResolvePath resolves an ordered category path (parent first, at most two
// levels) and returns the id of the deepest resolved level.
func (r *CategoryResolver) ResolvePath(ctx context.Context, path []string) (int, error) {
	parent := 0
	for _, name := range path {
		id, err := r.Resolve(ctx, name, parent)
		if err != nil {
			return 0, err
		}
		if id == 0 {
			break
		}
		parent = id
	}
	return parent, nil
}
