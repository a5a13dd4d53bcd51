package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Conflict renders the ON CONFLICT and RETURNING tail of an insert.
// The zero value renders nothing, so a duplicate key surfaces as an error.
type Conflict struct {
	// Target lists the unique columns. Without it no ON CONFLICT clause is written.
	Target []string
	// Add columns are accumulated: col = table.col + EXCLUDED.col.
	Add []string
	// Replace columns take the inserted value: col = EXCLUDED.col.
	Replace   []string
	Returning []string
}

// DoNothing skips rows that collide on target.
func DoNothing(target ...string) Conflict {
	return Conflict{Target: target}
}

func (c Conflict) clause(table string) string {
	parts := make([]string, 0, 2)
	if len(c.Target) > 0 {
		sets := make([]string, 0, len(c.Add)+len(c.Replace))
		for _, col := range c.Add {
			sets = append(sets, fmt.Sprintf("%s = %s.%s + EXCLUDED.%s", col, table, col, col))
		}
		for _, col := range c.Replace {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}

		action := "DO NOTHING"
		if len(sets) > 0 {
			action = "DO UPDATE SET " + strings.Join(sets, ", ")
		}
		parts = append(parts, fmt.Sprintf("ON CONFLICT (%s) %s", strings.Join(c.Target, ", "), action))
	}
	if len(c.Returning) > 0 {
		parts = append(parts, "RETURNING "+strings.Join(c.Returning, ", "))
	}
	return strings.Join(parts, " ")
}

// InsertModel writes one row per model from its db tags. Every model must
// yield the same columns.
func InsertModel(table string, conflict Conflict, models ...any) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert %s: at least one model is required", table)
	}

	builder := InsertInto(table)
	var columns []string
	for i, model := range models {
		cols, vals, err := columnsAndValuesFromModel(model)
		if err != nil {
			return "", nil, fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
		if i == 0 {
			columns = cols
			builder.Columns(cols...)
		} else if !slices.Equal(columns, cols) {
			return "", nil, fmt.Errorf("insert %s row %d: columns %v differ from %v", table, i, cols, columns)
		}
		builder.Values(vals...)
	}

	for _, col := range slices.Concat(conflict.Add, conflict.Replace) {
		if !slices.Contains(columns, col) {
			return "", nil, fmt.Errorf("insert %s: conflict column %s is not inserted", table, col)
		}
	}

	return builder.Suffix(conflict.clause(table)).ToSQL()
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
