// Package output provides output formatting for ghosttape-cli.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// Table holds rendered tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions writes the table, optionally without headers.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return nil
}

// TableFormatter renders result values as ASCII tables. A slice of row
// structs becomes one table row per element; a single struct becomes a
// FIELD/VALUE listing; a map becomes a KEY/VALUE listing with sorted
// keys. Values that fit none of these fall back to indented JSON.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return v.RenderWithOptions(w, f.NoHeaders)
	}

	table, ok := f.reflectTable(reflect.ValueOf(data))
	if !ok {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

func (f *TableFormatter) reflectTable(v reflect.Value) (*Table, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return f.sliceTable(v)
	case reflect.Struct:
		return f.fieldTable(v), true
	case reflect.Map:
		return keyValueTable(v), true
	}
	return nil, false
}

// column is one visible column of a row struct.
type column struct {
	header string
	index  int
}

// columnsFor derives the visible columns of a row struct. The table tag
// controls visibility and naming: "-" hides a field, "wide" shows it
// only in wide mode, and any other value overrides the header, so
// `table:"HASH,wide"` is a wide-only column titled HASH. Without an
// override the header comes from the json tag or the field name.
func columnsFor(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, wideOnly, skip := parseTableTag(field.Tag.Get("table"))
		if skip || (wideOnly && !wide) {
			continue
		}
		if name == "" {
			name = headerName(field)
		}
		cols = append(cols, column{header: strings.ToUpper(name), index: i})
	}
	return cols
}

func parseTableTag(tag string) (name string, wide, skip bool) {
	for _, part := range strings.Split(tag, ",") {
		switch part {
		case "":
		case "-":
			skip = true
		case "wide":
			wide = true
		default:
			name = part
		}
	}
	return name, wide, skip
}

func headerName(field reflect.StructField) string {
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		if name := strings.Split(jsonTag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return snake(field.Name)
}

func (f *TableFormatter) sliceTable(v reflect.Value) (*Table, bool) {
	if v.Len() == 0 {
		return &Table{}, true
	}

	elem := v.Index(0)
	for elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, false
	}

	cols := columnsFor(elem.Type(), f.Wide)
	table := &Table{}
	for _, col := range cols {
		table.Headers = append(table.Headers, col.header)
	}

	for i := 0; i < v.Len(); i++ {
		row := v.Index(i)
		for row.Kind() == reflect.Ptr {
			row = row.Elem()
		}
		cells := make([]string, 0, len(cols))
		for _, col := range cols {
			cells = append(cells, cell(row.Field(col.index)))
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, true
}

// fieldTable lists a single struct as FIELD/VALUE rows, wide columns
// included; a lone record shows everything it has.
func (f *TableFormatter) fieldTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, col := range columnsFor(v.Type(), true) {
		table.AddRow(strings.ToLower(col.header), cell(v.Field(col.index)))
	}
	return table
}

// keyValueTable lists map entries sorted by key for stable output.
func keyValueTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE"}}

	keys := make([]string, 0, v.Len())
	byKey := make(map[string]string, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := cell(iter.Key())
		keys = append(keys, k)
		byKey[k] = cell(iter.Value())
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.AddRow(k, byKey[k])
	}
	return table
}

// cell formats one value for a table cell. Empty values render as "-"
// so sparse identity columns stay readable.
func cell(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Type() {
	case reflect.TypeOf(time.Time{}):
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	case reflect.TypeOf(time.Duration(0)):
		return v.Interface().(time.Duration).String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		if v.Type().Elem().Kind() == reflect.String {
			parts := make([]string, v.Len())
			for i := range parts {
				parts[i] = v.Index(i).String()
			}
			return strings.Join(parts, ",")
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// snake converts a CamelCase field name to snake_case, keeping acronym
// runs together (MapCRC -> map_crc).
func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
