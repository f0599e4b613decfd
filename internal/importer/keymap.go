package importer

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	customerdomain "github.com/smallbiznis/salesdash/internal/customer/domain"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	regiondomain "github.com/smallbiznis/salesdash/internal/region/domain"
	"gorm.io/gorm"
)

// KeyMap resolves extract surrogate keys to internal ids. It is valid for a
// single import run.
type KeyMap struct {
	ids map[string]snowflake.ID
}

func NewKeyMap(ids map[string]snowflake.ID) KeyMap {
	if ids == nil {
		ids = map[string]snowflake.ID{}
	}
	return KeyMap{ids: ids}
}

// Resolve returns the internal id for key. Blank and unknown keys are absent.
func (m KeyMap) Resolve(key string) (snowflake.ID, bool) {
	key = strings.TrimSpace(key)
	if key == "" || m.ids == nil {
		return 0, false
	}
	id, ok := m.ids[key]
	return id, ok
}

// ResolvePtr is Resolve for nullable foreign keys.
func (m KeyMap) ResolvePtr(key string) *snowflake.ID {
	id, ok := m.Resolve(key)
	if !ok {
		return nil
	}
	return &id
}

func (m KeyMap) Len() int {
	return len(m.ids)
}

// buildKeyMap joins surrogate → business key pairs with the business key →
// id lookup. Surrogates whose business key did not resolve are left out.
func buildKeyMap[K comparable](surrogates map[string]K, lookup map[K]snowflake.ID) KeyMap {
	ids := make(map[string]snowflake.ID, len(surrogates))
	for surrogate, business := range surrogates {
		if id, ok := lookup[business]; ok {
			ids[surrogate] = id
		}
	}
	return NewKeyMap(ids)
}

// KeyMapper builds per-run key maps from dimension records and the populated
// dimension tables.
type KeyMapper struct {
	db        *gorm.DB
	products  productdomain.Repository
	customers customerdomain.Repository
	regions   regiondomain.Repository
}

func NewKeyMapper(db *gorm.DB, products productdomain.Repository, customers customerdomain.Repository, regions regiondomain.Repository) *KeyMapper {
	return &KeyMapper{db: db, products: products, customers: customers, regions: regions}
}

func (m *KeyMapper) Products(ctx context.Context, records []ProductRecord) (KeyMap, error) {
	surrogates := make(map[string]string, len(records))
	for _, rec := range records {
		key, business := strings.TrimSpace(rec.ProductKey), strings.TrimSpace(rec.ProductID)
		if key != "" && business != "" {
			surrogates[key] = business
		}
	}
	if len(surrogates) == 0 {
		return NewKeyMap(nil), nil
	}
	lookup, err := m.products.LookupIDs(ctx, m.db, lo.Values(surrogates))
	if err != nil {
		return KeyMap{}, err
	}
	return buildKeyMap(surrogates, lookup), nil
}

func (m *KeyMapper) Customers(ctx context.Context, records []CustomerRecord) (KeyMap, error) {
	surrogates := make(map[string]string, len(records))
	for _, rec := range records {
		key, business := strings.TrimSpace(rec.CustomerKey), strings.TrimSpace(rec.CustomerID)
		if key != "" && business != "" {
			surrogates[key] = business
		}
	}
	if len(surrogates) == 0 {
		return NewKeyMap(nil), nil
	}
	lookup, err := m.customers.LookupIDs(ctx, m.db, lo.Values(surrogates))
	if err != nil {
		return KeyMap{}, err
	}
	return buildKeyMap(surrogates, lookup), nil
}

func (m *KeyMapper) Regions(ctx context.Context, records []RegionRecord) (KeyMap, error) {
	surrogates := make(map[string]regiondomain.NaturalKey, len(records))
	for _, rec := range records {
		key := strings.TrimSpace(rec.RegionKey)
		natural := regionKey(rec)
		if key != "" && !natural.IsZero() {
			surrogates[key] = natural
		}
	}
	if len(surrogates) == 0 {
		return NewKeyMap(nil), nil
	}
	lookup, err := m.regions.LookupIDs(ctx, m.db, lo.Values(surrogates))
	if err != nil {
		return KeyMap{}, err
	}
	return buildKeyMap(surrogates, lookup), nil
}

func regionKey(rec RegionRecord) regiondomain.NaturalKey {
	return regiondomain.NaturalKey{
		City:  strings.TrimSpace(rec.City),
		State: strings.TrimSpace(rec.State),
	}
}
