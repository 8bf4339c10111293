// Package migrations embeds the schema of the transaction store.
package migrations

import _ "embed"

//go:embed postgres/001_create_transactions.sql
var Postgres string

//go:embed sqlite/001_create_transactions.sql
var SQLite string
