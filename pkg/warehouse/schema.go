// Package warehouse assembles the star schema from staging tables.
// It is a pure package: callers read staging tables, pass them in, and
// write whatever comes back.
//
// Dimensions and facts are described by static descriptors (DimSpec,
// FactSchema) so that the expected layout of every warehouse table can be
// inspected and tested without running a build.
package warehouse

import (
	"github.com/gnames/gnstar/pkg/staging"
)

// Dimension table names.
const (
	DimCustomers       = "dim_customers"
	DimProducts        = "dim_products"
	DimStores          = "dim_stores"
	DimDate            = "dim_date"
	DimAddress         = "dim_address"
	DimProductCategory = "dim_product_category"
)

// Fact table names.
const (
	FactOrderLines  = "fact_order_lines"
	FactOrders      = "fact_orders"
	FactPayments    = "fact_payments"
	FactShipments   = "fact_shipments"
	FactWebSessions = "fact_web_sessions"
	FactNPS         = "fact_nps"
)

// DimSpec describes a dimension built from a single staging table.
type DimSpec struct {
	// Name of the dimension table.
	Name string

	// Sources are staging names tried in order; the first one present is
	// used.
	Sources []string

	// NaturalKey is the business identifier used for deduplication.
	NaturalKey string

	// Aliases rename alternative key labels to NaturalKey when
	// NaturalKey itself is absent.
	Aliases []string

	// SK is the surrogate key column added to the dimension.
	SK string
}

// DimSpecs lists the dimensions built from staging tables. The date
// dimension is derived separately by BuildDateDim.
var DimSpecs = []DimSpec{
	{
		Name:       DimCustomers,
		Sources:    []string{staging.Customers},
		NaturalKey: "customer_id",
		Aliases:    []string{"id"},
		SK:         "customer_sk",
	},
	{
		Name:       DimProducts,
		Sources:    []string{staging.Products},
		NaturalKey: "product_id",
		SK:         "product_sk",
	},
	{
		Name:       DimStores,
		Sources:    []string{staging.Stores, staging.Channels},
		NaturalKey: "store_id",
		Aliases:    []string{"channel_id"},
		SK:         "store_sk",
	},
	{
		Name:       DimAddress,
		Sources:    []string{staging.Address},
		NaturalKey: "address_id",
		SK:         "address_sk",
	},
	{
		Name:       DimProductCategory,
		Sources:    []string{staging.ProductCategory},
		NaturalKey: "category_id",
		SK:         "product_category_sk",
	},
}

// Column is an expected column of a fact table.
type Column struct {
	Name string

	// Required columns are reported when missing. The table is written
	// anyway.
	Required bool
}

// DimRef resolves a surrogate key of a dimension through a natural key
// column of the fact source.
type DimRef struct {
	Dim string
	Key string
	SK  string
}

// FactSchema describes how a fact table is assembled.
type FactSchema struct {
	// Name of the fact table.
	Name string

	// Sources are staging names of the primary table, tried in order.
	Sources []string

	// Headers are staging names of an optional header table, tried in
	// order. HeaderKey joins it to the primary table and HeaderColumns are
	// copied over when the primary table lacks them.
	Headers       []string
	HeaderKey     string
	HeaderColumns []string

	// Dims are the dimension surrogate keys to resolve.
	Dims []DimRef

	// DateColumn is normalized to a calendar day and resolved against
	// dim_date. The surrogate key is stored as DateSK.
	DateColumn string
	DateSK     string

	// Measures enables quantity, unit price and line total computation.
	Measures bool

	// Columns is the ordered projection of the final table.
	Columns []Column
}

// Expected returns the names of all projected columns.
func (f FactSchema) Expected() []string {
	res := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		res[i] = c.Name
	}
	return res
}

var (
	refCustomer = DimRef{Dim: DimCustomers, Key: "customer_id", SK: "customer_sk"}
	refProduct  = DimRef{Dim: DimProducts, Key: "product_id", SK: "product_sk"}
	refStore    = DimRef{Dim: DimStores, Key: "store_id", SK: "store_sk"}
)

func req(name string) Column { return Column{Name: name, Required: true} }
func opt(name string) Column { return Column{Name: name} }

// FactSchemas lists all fact tables in build order.
var FactSchemas = []FactSchema{
	{
		Name: FactOrderLines,
		Sources: []string{
			staging.OrderItems, "sales_order_item", "items", "orderlines",
		},
		Headers:       []string{staging.Orders, "sales_order"},
		HeaderKey:     "order_id",
		HeaderColumns: []string{"order_date", "customer_id", "store_id"},
		Dims:          []DimRef{refCustomer, refProduct, refStore},
		DateColumn:    "order_date",
		DateSK:        "order_date_sk",
		Measures:      true,
		Columns: []Column{
			req("order_id"), opt("order_date_sk"), opt("customer_sk"),
			opt("product_sk"), opt("store_sk"), opt("quantity"),
			opt("unit_price"), opt("line_total"),
		},
	},
	{
		Name:       FactOrders,
		Sources:    []string{staging.Orders, "sales_order"},
		Dims:       []DimRef{refCustomer, refStore},
		DateColumn: "order_date",
		DateSK:     "order_date_sk",
		Columns: []Column{
			req("order_id"), opt("order_date_sk"), opt("customer_sk"),
			opt("store_sk"), opt("status"), opt("subtotal"),
			opt("tax_amount"), opt("shipping_fee"), opt("total_amount"),
		},
	},
	{
		Name:       FactPayments,
		Sources:    []string{staging.Payment},
		DateColumn: "created_at",
		DateSK:     "payment_date_sk",
		Columns: []Column{
			req("payment_id"), opt("order_id"), opt("payment_date_sk"),
			opt("amount"), opt("status"), opt("payment_method"),
		},
	},
	{
		Name:       FactShipments,
		Sources:    []string{staging.Shipment},
		DateColumn: "shipped_at",
		DateSK:     "shipped_date_sk",
		Columns: []Column{
			req("shipment_id"), opt("order_id"), opt("shipped_date_sk"),
			opt("carrier"), opt("status"), opt("tracking_number"),
		},
	},
	{
		Name:       FactWebSessions,
		Sources:    []string{staging.WebSession},
		DateColumn: "started_at",
		DateSK:     "session_date_sk",
		Columns: []Column{
			req("session_id"), opt("customer_id"), opt("session_date_sk"),
			opt("page_views"), opt("duration_seconds"),
		},
	},
	{
		Name:       FactNPS,
		Sources:    []string{staging.NPSResponse},
		DateColumn: "response_date",
		DateSK:     "response_date_sk",
		Columns: []Column{
			req("nps_id"), opt("customer_id"), opt("response_date_sk"),
			opt("score"), opt("comment"),
		},
	},
}
