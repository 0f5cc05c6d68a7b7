// Package schema provides the embedded catalog DDL and applies it to a database.
package schema

import (
	"embed"
)

//go:embed sql/tables.sql
var TablesSQL string

//go:embed sql/views/*.sql
var viewFS embed.FS
