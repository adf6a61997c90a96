package domain

// StockStatus is the display classification of a product's stock.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

const (
	// LowStockThreshold is the first quantity that counts as in stock.
	LowStockThreshold int64 = 10

	// UntrackedStock is reported for unlimited digital products.
	UntrackedStock int64 = -1
)

// StockLevel is the derived stock of a product. It is never persisted.
type StockLevel struct {
	Effective int64
	Status    StockStatus
}

// ComputeStock derives the effective stock of a product.
//
// Physical products sum their variants. Digital and gift card products use the
// digital stock configuration: unlimited (the default when no mode is set) is
// always in stock, limited uses digitalStockCount.
func ComputeStock(p *Product, variants []*Variant) StockLevel {
	if !p.ProductType().IsDigital() {
		var total int64
		for _, v := range variants {
			total += v.StockCount
		}
		return StockLevel{Effective: total, Status: classifyStock(total)}
	}

	mode := p.DigitalStockMode()
	if mode == nil || *mode != StockModeLimited {
		return StockLevel{Effective: UntrackedStock, Status: StockInStock}
	}

	var count int64
	if c := p.DigitalStockCount(); c != nil {
		count = *c
	}
	return StockLevel{Effective: count, Status: classifyStock(count)}
}

func classifyStock(qty int64) StockStatus {
	switch {
	case qty <= 0:
		return StockOutOfStock
	case qty < LowStockThreshold:
		return StockLowStock
	default:
		return StockInStock
	}
}
