// Package db provides embedded seed data.
package db

import _ "embed"

// SeedProducts contains the default product catalog as JSON.
//
//go:embed seed/products.json
var SeedProducts []byte
