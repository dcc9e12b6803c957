// Package inventory holds the backend-agnostic stock logic: the unit-value sort
// key, composite-key matching, intake reconciliation, two-phase BOM validation
// and deduction, and the view helpers (sort, filter, stats).
//
// Every function takes a *models.Table and returns a new table when it changes
// anything. Persisting the result is the caller's job, done once per batch.
package inventory
