// Package core implements the CSV edit pipeline that sits between raw upload
// bytes and the SQL that materializes them as a Delta table: parsing and
// normalization, the session edit engine with bounded undo, schema
// inference, SQL generation, and CSV export.
//
// The package has no UI or transport dependencies. Configuration and
// credentials are resolved by the caller and passed in as parameters.
package core
