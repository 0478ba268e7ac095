package postgres

import _ "embed"

// Schema creates every table the repositories use. Each statement is
// idempotent so it can be applied on every deploy.
//
//go:embed schema.sql
var Schema string
