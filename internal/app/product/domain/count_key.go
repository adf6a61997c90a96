package domain

import (
	"strings"
	"time"
)

// CountNamespacePrefix versions the counter layout. Changing it requires a backfill.
const CountNamespacePrefix = "v2_"

// CountNamespace returns the counter partition for a status.
func CountNamespace(status ProductStatus) string {
	return CountNamespacePrefix + string(status)
}

// StatusFromNamespace is the inverse of CountNamespace.
func StatusFromNamespace(namespace string) (ProductStatus, bool) {
	s, ok := strings.CutPrefix(namespace, CountNamespacePrefix)
	if !ok || !ProductStatus(s).Valid() {
		return "", false
	}
	return ProductStatus(s), true
}

// CountKey addresses one product inside the count aggregate.
// SortKey is the product's creation time; ProductID breaks ties.
type CountKey struct {
	Namespace string
	SortKey   time.Time
	ProductID string
}

// CountKeyFor builds the key for a product in the given status. The sort key
// is normalized to UTC without a monotonic reading so keys compare with ==.
func CountKeyFor(status ProductStatus, createdAt time.Time, productID string) CountKey {
	return CountKey{
		Namespace: CountNamespace(status),
		SortKey:   createdAt.UTC().Round(0),
		ProductID: productID,
	}
}

// Equal compares keys by instant rather than by time.Time representation.
func (k CountKey) Equal(o CountKey) bool {
	return k.Namespace == o.Namespace && k.ProductID == o.ProductID && k.SortKey.Equal(o.SortKey)
}

// Less orders keys by namespace, then sort key, then product id.
func (k CountKey) Less(o CountKey) bool {
	if k.Namespace != o.Namespace {
		return k.Namespace < o.Namespace
	}
	if !k.SortKey.Equal(o.SortKey) {
		return k.SortKey.Before(o.SortKey)
	}
	return k.ProductID < o.ProductID
}
