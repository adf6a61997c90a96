package m_count

// Field name constants for the count aggregate tables.
const (
	EntriesTable = "product_count_entries"
	TotalsTable  = "product_count_totals"

	Namespace = "namespace"
	SortKey   = "sort_key"
	ProductID = "product_id"
	Total     = "total"
)

var EntryColumns = []string{Namespace, SortKey, ProductID}
