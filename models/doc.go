// Package models holds the typed views of PRTG table records.
//
// Every entity is a flat struct that embeds the field groups it shares with
// other entities (ObjectFields, StatusFields, PriorityFields) instead of
// inheriting them. Records from the API stay the source of truth; entities
// are decoded from them for structured output and filter expressions.
package models
