package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Region struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Country    string       `json:"country" gorm:"type:varchar(128);not null;default:''"`
	RegionName string       `json:"region" gorm:"column:region;type:varchar(128);not null;default:'';index:ix_regions_region"`
	State      string       `json:"state" gorm:"type:varchar(128);not null;uniqueIndex:ux_regions_city_state,priority:2"`
	City       string       `json:"city" gorm:"type:varchar(128);not null;uniqueIndex:ux_regions_city_state,priority:1"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (Region) TableName() string { return "regions" }

// NaturalKey identifies a region. Distinct (country, region) pairs sharing a
// city and state collapse onto one row.
type NaturalKey struct {
	City  string
	State string
}

func (k NaturalKey) IsZero() bool {
	return strings.TrimSpace(k.City) == "" && strings.TrimSpace(k.State) == ""
}

func (r Region) Key() NaturalKey {
	return NaturalKey{City: r.City, State: r.State}
}
