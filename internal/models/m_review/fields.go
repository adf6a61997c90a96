package m_review

// Field name constants for the reviews table.
const (
	TableName = "reviews"

	ReviewID  = "review_id"
	ProductID = "product_id"
	Rating    = "rating"
	Status    = "status"
	CreatedAt = "created_at"

	IndexProductStatus = "idx_reviews_product_status"
)

var Columns = []string{ReviewID, ProductID, Rating, Status, CreatedAt}
