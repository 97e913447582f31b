// Package output renders tokmint-cli results as a table, JSON or YAML.
//
// Results are plain structs. The table form lists one field per row,
// named by the field's json tag; slices of structs render one row per
// element.
package output
