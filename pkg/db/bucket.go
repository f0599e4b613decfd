package db

import (
	"fmt"

	"gorm.io/gorm"
)

type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
)

// DateBucket returns a SQL expression formatting column as YYYY-MM-DD or
// YYYY-MM in the connected dialect, so grouped rows scan into strings
// everywhere.
func DateBucket(conn *gorm.DB, column string, g Granularity) string {
	name := ""
	if conn != nil && conn.Dialector != nil {
		name = conn.Dialector.Name()
	}

	switch name {
	case "postgres":
		if g == Month {
			return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
		}
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
	case "mysql":
		if g == Month {
			return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", column)
		}
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", column)
	default:
		if g == Month {
			return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
		}
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
	}
}
