package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// Parquet column names
const (
	colBatterID  = "batter_id"
	colPitcherID = "pitcher_id"
	colPA        = "pa"
	colAB        = "ab"
	colAVG       = "avg"
	colWOBA      = "woba"
	colHR        = "hr"
	colAsOf      = "asof"
)

var bvpSchema = arrow.NewSchema([]arrow.Field{
	{Name: colBatterID, Type: arrow.PrimitiveTypes.Int64},
	{Name: colPitcherID, Type: arrow.PrimitiveTypes.Int64},
	{Name: colPA, Type: arrow.PrimitiveTypes.Int64},
	{Name: colAB, Type: arrow.PrimitiveTypes.Int64},
	{Name: colAVG, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: colWOBA, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: colHR, Type: arrow.PrimitiveTypes.Int64},
	{Name: colAsOf, Type: arrow.FixedWidthTypes.Date32},
}, nil)

// ParquetBvPRepository stores the matchup table in a single Parquet file.
// Every upsert rewrites the whole file.
type ParquetBvPRepository struct {
	path string
	mem  memory.Allocator

	mu     sync.Mutex
	loaded bool
	rows   map[models.PairKey]models.BvPRecord
}

// NewParquetBvPRepository creates a Parquet-backed matchup store at path
func NewParquetBvPRepository(path string) *ParquetBvPRepository {
	return &ParquetBvPRepository{
		path: path,
		mem:  memory.DefaultAllocator,
		rows: make(map[models.PairKey]models.BvPRecord),
	}
}

// LoadAll reads every row from the file. A missing file is an empty table.
func (r *ParquetBvPRepository) LoadAll(ctx context.Context) ([]models.BvPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readFile(ctx)
	if err != nil {
		return nil, err
	}

	r.rows = make(map[models.PairKey]models.BvPRecord, len(records))
	for _, rec := range records {
		r.rows[rec.Key()] = rec
	}
	r.loaded = true
	return records, nil
}

// Upsert overwrites or appends the row and rewrites the file
func (r *ParquetBvPRepository) Upsert(ctx context.Context, record models.BvPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		if existing, err := r.readFile(ctx); err == nil {
			for _, rec := range existing {
				r.rows[rec.Key()] = rec
			}
		}
		r.loaded = true
	}

	r.rows[record.Key()] = record
	return r.writeFile()
}

// Close is a no-op; the file is closed after each write
func (r *ParquetBvPRepository) Close() error {
	return nil
}

func (r *ParquetBvPRepository) readFile(ctx context.Context) ([]models.BvPRecord, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bvp cache: %w", err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(r.mem), pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("failed to read bvp cache: %w", err)
	}
	defer tbl.Release()

	reader := array.NewTableReader(tbl, 4096)
	defer reader.Release()

	var records []models.BvPRecord
	for reader.Next() {
		rec := reader.Record()
		cols := recordColumns(rec)
		if cols[colBatterID] == nil || cols[colPitcherID] == nil {
			return nil, fmt.Errorf("bvp cache is missing id columns")
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			batter, _ := intAt(cols[colBatterID], i)
			pitcher, _ := intAt(cols[colPitcherID], i)
			pa, _ := intAt(cols[colPA], i)
			ab, _ := intAt(cols[colAB], i)
			hr, _ := intAt(cols[colHR], i)
			asof, _ := timeAt(cols[colAsOf], i)

			records = append(records, models.BvPRecord{
				BatterID:  batter,
				PitcherID: pitcher,
				Stats: models.BvPStats{
					PA:   int(pa),
					AB:   int(ab),
					AVG:  floatAt(cols[colAVG], i),
					WOBA: floatAt(cols[colWOBA], i),
					HR:   int(hr),
				},
				AsOf: asof,
			})
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan bvp cache: %w", err)
	}
	return records, nil
}

func (r *ParquetBvPRepository) writeFile() error {
	keys := make([]models.PairKey, 0, len(r.rows))
	for k := range r.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].BatterID != keys[j].BatterID {
			return keys[i].BatterID < keys[j].BatterID
		}
		return keys[i].PitcherID < keys[j].PitcherID
	})

	b := array.NewRecordBuilder(r.mem, bvpSchema)
	defer b.Release()

	for _, k := range keys {
		rec := r.rows[k]
		b.Field(0).(*array.Int64Builder).Append(rec.BatterID)
		b.Field(1).(*array.Int64Builder).Append(rec.PitcherID)
		b.Field(2).(*array.Int64Builder).Append(int64(rec.Stats.PA))
		b.Field(3).(*array.Int64Builder).Append(int64(rec.Stats.AB))
		appendNullableFloat(b.Field(4).(*array.Float64Builder), rec.Stats.AVG)
		appendNullableFloat(b.Field(5).(*array.Float64Builder), rec.Stats.WOBA)
		b.Field(6).(*array.Int64Builder).Append(int64(rec.Stats.HR))
		b.Field(7).(*array.Date32Builder).Append(arrow.Date32FromTime(models.DateOnly(rec.AsOf)))
	}

	record := b.NewRecord()
	defer record.Release()
	tbl := array.NewTableFromRecords(bvpSchema, []arrow.Record{record})
	defer tbl.Release()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".bvp-*.parquet")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(tbl, tmp, 4096, props, pqarrow.DefaultWriterProps()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bvp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace bvp cache: %w", err)
	}
	return nil
}

func recordColumns(rec arrow.Record) map[string]arrow.Array {
	cols := make(map[string]arrow.Array)
	for i, f := range rec.Schema().Fields() {
		cols[f.Name] = rec.Column(i)
	}
	return cols
}

func appendNullableFloat(b *array.Float64Builder, v float64) {
	if models.IsFinite(v) {
		b.Append(v)
		return
	}
	b.AppendNull()
}

// intAt reads an integer cell, accepting the float columns pandas writes for nullable ints
func intAt(col arrow.Array, i int) (int64, bool) {
	if col == nil || col.IsNull(i) {
		return 0, false
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(i), true
	case *array.Int32:
		return int64(c.Value(i)), true
	case *array.Float64:
		v := c.Value(i)
		if !models.IsFinite(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func floatAt(col arrow.Array, i int) float64 {
	if col == nil || col.IsNull(i) {
		return nanValue
	}
	switch c := col.(type) {
	case *array.Float64:
		return c.Value(i)
	case *array.Float32:
		return float64(c.Value(i))
	case *array.Int64:
		return float64(c.Value(i))
	}
	return nanValue
}

func timeAt(col arrow.Array, i int) (time.Time, bool) {
	if col == nil || col.IsNull(i) {
		return time.Time{}, false
	}
	switch c := col.(type) {
	case *array.Date32:
		return c.Value(i).ToTime().UTC(), true
	case *array.Date64:
		return c.Value(i).ToTime().UTC(), true
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(i).ToTime(unit).UTC(), true
	}
	return time.Time{}, false
}

var _ BvPRepository = (*ParquetBvPRepository)(nil)
