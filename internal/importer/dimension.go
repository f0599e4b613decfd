package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/salesdash/internal/clock"
	customerdomain "github.com/smallbiznis/salesdash/internal/customer/domain"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	regiondomain "github.com/smallbiznis/salesdash/internal/region/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultChunkSize = 500

// DimensionResult summarizes one dimension upsert.
type DimensionResult struct {
	Dataset  string `json:"dataset"`
	Seen     int    `json:"seen"`
	Upserted int    `json:"upserted"`
	Invalid  int    `json:"invalid"`
	Chunks   int    `json:"chunks"`
	Skipped  bool   `json:"skipped"`
}

// DimensionUpserter writes dimension records keyed by their natural key.
type DimensionUpserter struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	chunkSize int
	products  productdomain.Repository
	customers customerdomain.Repository
	regions   regiondomain.Repository
}

func NewDimensionUpserter(
	db *gorm.DB,
	log *zap.Logger,
	genID *snowflake.Node,
	clk clock.Clock,
	products productdomain.Repository,
	customers customerdomain.Repository,
	regions regiondomain.Repository,
) *DimensionUpserter {
	return &DimensionUpserter{
		db:        db,
		log:       log.Named("importer.dimension"),
		genID:     genID,
		clock:     clk,
		chunkSize: DefaultChunkSize,
		products:  products,
		customers: customers,
		regions:   regions,
	}
}

// dedupeLast keeps the last record for each key in first-seen order.
// onReplace, when set, sees each record that displaces an earlier one.
func dedupeLast[T any, K comparable](records []T, key func(T) (K, bool), onReplace func(prev, next T)) (out []T, invalid int) {
	index := make(map[K]int, len(records))
	for _, rec := range records {
		k, ok := key(rec)
		if !ok {
			invalid++
			continue
		}
		if i, seen := index[k]; seen {
			if onReplace != nil {
				onReplace(out[i], rec)
			}
			out[i] = rec
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out, invalid
}

func (u *DimensionUpserter) now() time.Time {
	return u.clock.Now().UTC().Truncate(time.Second)
}

func (u *DimensionUpserter) UpsertProducts(ctx context.Context, records []ProductRecord) (DimensionResult, error) {
	res := DimensionResult{Dataset: "products", Seen: len(records)}
	unique, invalid := dedupeLast(records, func(r ProductRecord) (string, bool) {
		k := strings.TrimSpace(r.ProductID)
		return k, k != ""
	}, nil)
	res.Invalid = invalid

	now := u.now()
	for _, chunk := range lo.Chunk(unique, u.chunkSize) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rows := lo.Map(chunk, func(r ProductRecord, _ int) productdomain.Product {
			return productdomain.Product{
				ID:          u.genID.Generate(),
				ProductID:   strings.TrimSpace(r.ProductID),
				ProductName: strings.TrimSpace(r.ProductName),
				Category:    strings.TrimSpace(r.Category),
				SubCategory: strings.TrimSpace(r.SubCategory),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
		})
		if err := u.products.UpsertBatch(ctx, u.db, rows); err != nil {
			return res, fmt.Errorf("upsert products chunk %d: %w", res.Chunks+1, err)
		}
		res.Chunks++
		res.Upserted += len(rows)
	}
	return res, nil
}

func (u *DimensionUpserter) UpsertCustomers(ctx context.Context, records []CustomerRecord) (DimensionResult, error) {
	res := DimensionResult{Dataset: "customers", Seen: len(records)}
	unique, invalid := dedupeLast(records, func(r CustomerRecord) (string, bool) {
		k := strings.TrimSpace(r.CustomerID)
		return k, k != ""
	}, nil)
	res.Invalid = invalid

	now := u.now()
	for _, chunk := range lo.Chunk(unique, u.chunkSize) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rows := lo.Map(chunk, func(r CustomerRecord, _ int) customerdomain.Customer {
			return customerdomain.Customer{
				ID:           u.genID.Generate(),
				CustomerID:   strings.TrimSpace(r.CustomerID),
				CustomerName: strings.TrimSpace(r.CustomerName),
				Segment:      strings.TrimSpace(r.Segment),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		})
		if err := u.customers.UpsertBatch(ctx, u.db, rows); err != nil {
			return res, fmt.Errorf("upsert customers chunk %d: %w", res.Chunks+1, err)
		}
		res.Chunks++
		res.Upserted += len(rows)
	}
	return res, nil
}

func (u *DimensionUpserter) UpsertRegions(ctx context.Context, records []RegionRecord) (DimensionResult, error) {
	res := DimensionResult{Dataset: "regions", Seen: len(records)}
	unique, invalid := dedupeLast(records, func(r RegionRecord) (regiondomain.NaturalKey, bool) {
		k := regionKey(r)
		return k, !k.IsZero()
	}, func(prev, next RegionRecord) {
		if strings.TrimSpace(prev.Country) != strings.TrimSpace(next.Country) ||
			strings.TrimSpace(prev.Region) != strings.TrimSpace(next.Region) {
			u.log.Warn("region rows share city and state within file",
				zap.String("city", strings.TrimSpace(next.City)),
				zap.String("state", strings.TrimSpace(next.State)),
				zap.String("dropped_region", strings.TrimSpace(prev.Region)),
				zap.String("kept_region", strings.TrimSpace(next.Region)),
			)
		}
	})
	res.Invalid = invalid

	now := u.now()
	for _, chunk := range lo.Chunk(unique, u.chunkSize) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rows := lo.Map(chunk, func(r RegionRecord, _ int) regiondomain.Region {
			return regiondomain.Region{
				ID:         u.genID.Generate(),
				Country:    strings.TrimSpace(r.Country),
				RegionName: strings.TrimSpace(r.Region),
				State:      strings.TrimSpace(r.State),
				City:       strings.TrimSpace(r.City),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		})
		if err := u.warnRegionMerges(ctx, rows); err != nil {
			return res, err
		}
		if err := u.regions.UpsertBatch(ctx, u.db, rows); err != nil {
			return res, fmt.Errorf("upsert regions chunk %d: %w", res.Chunks+1, err)
		}
		res.Chunks++
		res.Upserted += len(rows)
	}
	return res, nil
}

// warnRegionMerges logs rows whose (city, state) already belongs to a region
// with a different country or region name. The upsert overwrites them.
func (u *DimensionUpserter) warnRegionMerges(ctx context.Context, rows []regiondomain.Region) error {
	keys := lo.Map(rows, func(r regiondomain.Region, _ int) regiondomain.NaturalKey { return r.Key() })
	existing, err := u.regions.FindByKeys(ctx, u.db, keys)
	if err != nil {
		return fmt.Errorf("load existing regions: %w", err)
	}
	for _, row := range rows {
		prev, ok := existing[row.Key()]
		if !ok {
			continue
		}
		if prev.Country != row.Country || prev.RegionName != row.RegionName {
			u.log.Warn("region merged on city and state",
				zap.String("city", row.City),
				zap.String("state", row.State),
				zap.String("previous_country", prev.Country),
				zap.String("previous_region", prev.RegionName),
				zap.String("country", row.Country),
				zap.String("region", row.RegionName),
			)
		}
	}
	return nil
}
