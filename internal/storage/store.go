package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Table names in the backing store.
const (
	TableDomains    = "Domains"
	TablePublishers = "Publishers"
)

// ErrNotFound is returned by Update when no row matches the id.
var ErrNotFound = errors.New("no row matches id")

// Row is a store record in the store's own shape. Every row has a string "id".
type Row map[string]any

// ID returns the row id, or "" if absent.
func (r Row) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Store is the boundary with the backing store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Select returns every row of table ordered ascending by orderBy.
	Select(ctx context.Context, table, orderBy string) ([]Row, error)

	// Insert stores a new row and returns it with its store-assigned id.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update replaces the row keyed by id. It returns ErrNotFound when no row matches.
	Update(ctx context.Context, table, id string, row Row) (Row, error)

	// Delete removes the row keyed by id. Deleting a missing id is not an error.
	Delete(ctx context.Context, table, id string) error

	// Close releases the store connection.
	Close() error
}

var knownTables = map[string]bool{TableDomains: true, TablePublishers: true}

func checkTable(table string) error {
	if !knownTables[table] {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

// withoutID copies row without its id, for inserts.
func withoutID(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// sortRows orders rows ascending by the string form of column, case-insensitively.
func sortRows(rows []Row, column string) {
	if column == "" {
		return
	}
	key := func(r Row) string {
		v, ok := r[column]
		if !ok || v == nil {
			return ""
		}
		return strings.ToLower(fmt.Sprint(v))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]) < key(rows[j])
	})
}
