package domain

import "time"

// Category is a node in the category tree. ParentID is nil for roots.
type Category struct {
	ID        string
	Name      string
	Slug      string
	ParentID  *string
	CreatedAt time.Time
}

// Variant is a sellable color/size combination owned by a product.
type Variant struct {
	ID              string
	ProductID       string
	Color           string
	Size            string
	SKU             string
	StockCount      int64
	PriceAdjustment int64
	IsDefault       bool
	CreatedAt       time.Time
}

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a customer rating of a product.
type Review struct {
	ID        string
	ProductID string
	Rating    int
	Status    ReviewStatus
	CreatedAt time.Time
}
