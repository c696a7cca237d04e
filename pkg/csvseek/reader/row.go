package reader

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one parsed line keyed by header name, in header order.
type Row struct {
	fields *orderedmap.OrderedMap[string, string]
}

func newRow(headers, values []string) *Row {
	fields := orderedmap.New[string, string](len(headers))
	for i, name := range headers {
		fields.Set(name, values[i])
	}
	return &Row{fields: fields}
}

func (r *Row) Get(name string) (string, bool) {
	return r.fields.Get(name)
}

func (r *Row) Len() int {
	return r.fields.Len()
}

func (r *Row) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (r *Row) Values() []string {
	values := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}

// Map returns an unordered copy.
func (r *Row) Map() map[string]string {
	m := make(map[string]string, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

// MarshalJSON writes the row as an object with keys in header order.
func (r *Row) MarshalJSON() ([]byte, error) {
	return r.fields.MarshalJSON()
}
