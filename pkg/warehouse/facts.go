package warehouse

import (
	"github.com/gnames/gnstar/pkg/table"
)

// Projection reports how the expected columns of a fact table matched the
// columns that were available after enrichment.
type Projection struct {
	// Kept are expected columns present in the result.
	Kept []string

	// Missing are expected columns that were not available.
	Missing []string

	// MissingRequired is the subset of Missing marked as required.
	MissingRequired []string
}

// Resolution reports the outcome of one surrogate key lookup.
type Resolution struct {
	// SK is the surrogate key column in the fact table.
	SK string

	// Matched is the number of rows that found their dimension row.
	Matched int

	// Skipped is true when the dimension or the key column was not
	// available, so the axis was not resolved at all.
	Skipped bool
}

// FactResult is the outcome of BuildFact.
type FactResult struct {
	Table       *table.Table
	Projection  Projection
	Resolutions []Resolution

	// SourceRows is the number of rows of the primary table.
	SourceRows int

	// HeaderJoined is true when a header table contributed columns.
	HeaderJoined bool
}

// BuildFact assembles one fact table. The primary table is enriched with
// header columns, surrogate keys of every available dimension and the
// date surrogate key, then measures are computed when the schema asks for
// them. The result is projected to the schema columns and deduplicated.
//
// Every join is a left join that keeps the first matching dimension row,
// so the result never has more rows than primary. Rows without a match
// keep a null surrogate key.
func BuildFact(
	schema FactSchema,
	primary, header *table.Table,
	dims Dims,
) FactResult {
	res := FactResult{SourceRows: primary.Len()}
	if primary == nil {
		return res
	}
	f := primary.Clone()
	f.Name = schema.Name

	if schema.HeaderKey != "" && header.Has(schema.HeaderKey) {
		hdr := header.DistinctOn(schema.HeaderKey)
		width := len(f.Columns)
		f, _ = f.LeftJoin(table.Join{
			Right:    hdr,
			LeftKey:  schema.HeaderKey,
			RightKey: schema.HeaderKey,
			Columns:  schema.HeaderColumns,
		})
		res.HeaderJoined = len(f.Columns) > width
	}

	for _, ref := range schema.Dims {
		var r Resolution
		f, r = resolve(f, ref, dims.Get(ref.Dim))
		res.Resolutions = append(res.Resolutions, r)
	}

	if schema.DateColumn != "" {
		var r Resolution
		f, r = resolveDate(f, schema.DateColumn, schema.DateSK, dims.Get(DimDate))
		res.Resolutions = append(res.Resolutions, r)
	}

	if schema.Measures {
		addMeasures(f)
	}

	res.Projection = project(schema, f)
	if len(res.Projection.Kept) == 0 {
		res.Table = table.New(schema.Name)
		return res
	}
	res.Table = f.Select(res.Projection.Kept...).Distinct()
	res.Table.Name = schema.Name
	return res
}

func resolve(f *table.Table, ref DimRef, dim *table.Table) (*table.Table, Resolution) {
	r := Resolution{SK: ref.SK}
	if dim == nil || !dim.Has(ref.Key) || !f.Has(ref.Key) {
		r.Skipped = true
		return f, r
	}
	f, r.Matched = f.LeftJoin(table.Join{
		Right:    dim,
		LeftKey:  ref.Key,
		RightKey: ref.Key,
		Columns:  []string{ref.SK},
	})
	return f, r
}

func resolveDate(
	f *table.Table,
	col, sk string,
	dim *table.Table,
) (*table.Table, Resolution) {
	r := Resolution{SK: sk}
	if dim == nil || !f.Has(col) {
		r.Skipped = true
		return f, r
	}
	f, r.Matched = f.LeftJoin(table.Join{
		Right:        dim,
		LeftKey:      col,
		RightKey:     "date",
		LeftKeyFunc:  table.DayKey,
		RightKeyFunc: table.DayKey,
		Columns:      []string{"date_sk"},
		As:           map[string]string{"date_sk": sk},
	})
	return f, r
}

func project(schema FactSchema, f *table.Table) Projection {
	var p Projection
	for _, c := range schema.Columns {
		if f.Has(c.Name) {
			p.Kept = append(p.Kept, c.Name)
			continue
		}
		p.Missing = append(p.Missing, c.Name)
		if c.Required {
			p.MissingRequired = append(p.MissingRequired, c.Name)
		}
	}
	return p
}
