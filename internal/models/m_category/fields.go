package m_category

// Field name constants for the categories table.
const (
	TableName = "categories"

	CategoryID = "category_id"
	Name       = "name"
	Slug       = "slug"
	ParentID   = "parent_id"
	CreatedAt  = "created_at"
)

var Columns = []string{CategoryID, Name, Slug, ParentID, CreatedAt}
