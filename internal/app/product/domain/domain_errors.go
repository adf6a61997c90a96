package domain

import "errors"

// Domain errors as sentinel values
var (
	// Product errors
	ErrProductNotFound    = errors.New("product not found")
	ErrEmptyName          = errors.New("product name cannot be empty")
	ErrInvalidPrice       = errors.New("product price cannot be negative")
	ErrInvalidStatus      = errors.New("invalid product status")
	ErrInvalidProductType = errors.New("invalid product type")
	ErrInvalidStockMode   = errors.New("invalid digital stock mode")
	ErrInvalidStockCount  = errors.New("digital stock count cannot be negative")
	ErrSlugTaken          = errors.New("slug is already in use")
	ErrEmptySlug          = errors.New("slug cannot be empty")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")

	// Count aggregate errors
	ErrCountEntryNotFound   = errors.New("count aggregate entry not found")
	ErrCountEntryExists     = errors.New("count aggregate entry already exists")
	ErrAggregateSyncFailure = errors.New("count aggregate out of sync")
)
