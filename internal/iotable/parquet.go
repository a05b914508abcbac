package iotable

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/gnames/gnstar/pkg/table"
)

// pandas stores a non-default index under this column prefix.
const indexColumnPrefix = "__index_level_"

func parquetCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed,
			fmt.Errorf("unsupported parquet compression %q", name)
	}
}

func writeParquet(path string, t *table.Table, compression string) error {
	codec, err := parquetCodec(compression)
	if err != nil {
		return err
	}

	mem := memory.NewGoAllocator()
	rec := toRecord(mem, t)
	defer rec.Release()

	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	chunk := max(tbl.NumRows(), 1)
	return pqarrow.WriteTable(tbl, f, chunk, props, pqarrow.DefaultWriterProps())
}

func arrowType(k table.Kind) arrow.DataType {
	switch k {
	case table.KindInt:
		return arrow.PrimitiveTypes.Int64
	case table.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case table.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case table.KindTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

func toRecord(mem memory.Allocator, t *table.Table) arrow.Record {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{
			Name:     c,
			Type:     arrowType(t.ColumnKind(i)),
			Nullable: true,
		}
	}
	schema := arrow.NewSchema(fields, nil)

	bld := array.NewRecordBuilder(mem, schema)
	defer bld.Release()

	for j := range t.Columns {
		fb := bld.Field(j)
		for _, row := range t.Rows {
			appendCell(fb, row[j])
		}
	}
	return bld.NewRecord()
}

func appendCell(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			bb.Append(n)
		case int:
			bb.Append(int64(n))
		}
	case *array.Float64Builder:
		f, ok := table.ToFloat(v)
		if !ok {
			bb.AppendNull()
			return
		}
		bb.Append(f)
	case *array.BooleanBuilder:
		bb.Append(v.(bool))
	case *array.TimestampBuilder:
		bb.Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
	case *array.StringBuilder:
		bb.Append(table.FormatValue(v))
	default:
		b.AppendNull()
	}
}

func readParquet(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(
		context.Background(),
		f,
		parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{},
		memory.DefaultAllocator,
	)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	nrows := int(tbl.NumRows())
	ncols := int(tbl.NumCols())

	var cols []string
	var keep []int
	for i := range ncols {
		name := tbl.Column(i).Name()
		if strings.HasPrefix(name, indexColumnPrefix) {
			continue
		}
		cols = append(cols, name)
		keep = append(keep, i)
	}

	res := table.New("", cols...)
	res.Rows = make([][]any, nrows)
	for i := range res.Rows {
		res.Rows[i] = make([]any, len(cols))
	}

	for j, ci := range keep {
		offset := 0
		for _, chunk := range tbl.Column(ci).Data().Chunks() {
			for k := 0; k < chunk.Len(); k++ {
				res.Rows[offset+k][j] = cellValue(chunk, k)
			}
			offset += chunk.Len()
		}
	}
	return res, nil
}

// cellValue converts one Arrow value into a table cell.
func cellValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return string(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	default:
		v := arr.GetOneForMarshal(i)
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}
