package importer

import "strings"

// Input file names inside the import directory.
const (
	FileProducts  = "dim_product.csv"
	FileCustomers = "dim_customer.csv"
	FileRegions   = "dim_region.csv"
	FileFacts     = "fact_sales.csv"
)

// Surrogate key columns of the dimension files.
const (
	ProductKeyColumn  = "product_key"
	CustomerKeyColumn = "customer_key"
	RegionKeyColumn   = "region_key"
)

type ProductRecord struct {
	ProductKey  string `csv:"product_key"`
	ProductID   string `csv:"product_id"`
	ProductName string `csv:"product_name"`
	Category    string `csv:"category"`
	SubCategory string `csv:"sub_category"`
}

type CustomerRecord struct {
	CustomerKey  string `csv:"customer_key"`
	CustomerID   string `csv:"customer_id"`
	CustomerName string `csv:"customer_name"`
	Segment      string `csv:"segment"`
}

type RegionRecord struct {
	RegionKey string `csv:"region_key"`
	Country   string `csv:"country"`
	Region    string `csv:"region"`
	State     string `csv:"state"`
	City      string `csv:"city"`
}

type FactRecord struct {
	ProductKey      string `csv:"product_key"`
	CustomerKey     string `csv:"customer_key"`
	RegionKey       string `csv:"region_key"`
	Sales           string `csv:"sales"`
	OrderDate       string `csv:"order_date"`
	TransactionDate string `csv:"transaction_date"`
}

// SourceDate returns the first non-blank date column of the row.
func (r FactRecord) SourceDate() string {
	if d := strings.TrimSpace(r.OrderDate); d != "" {
		return d
	}
	return strings.TrimSpace(r.TransactionDate)
}
