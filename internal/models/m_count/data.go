package m_count

import "time"

// Entry is one counted product in the product_count_entries table.
type Entry struct {
	Namespace string    `spanner:"namespace"`
	SortKey   time.Time `spanner:"sort_key"`
	ProductID string    `spanner:"product_id"`
}
