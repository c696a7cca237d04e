package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iamhimansu/csvseek/pkg/csvseek/index"
	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
	"github.com/iamhimansu/csvseek/pkg/csvseek/utils"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, reqJSON string, defaults fileConfig) (map[string]interface{}, string, error) {
	t.Helper()
	var req map[string]interface{}
	if err := json.Unmarshal([]byte(reqJSON), &req); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err := handle(context.Background(), req, defaults, utils.NopLogger(), &out)
	if err != nil {
		return nil, out.String(), err
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(out.Bytes(), &resp)
	return resp, out.String(), nil
}

func request(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestHandleLine(t *testing.T) {
	path := writeFixture(t, "people.csv", "id,name\n1,Alice\n2,Bob\n")

	resp, _, err := run(t, request(t, map[string]interface{}{"action": "line", "csv": path, "line": 2}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if resp["line"] != "2,Bob" {
		t.Errorf("line = %v", resp["line"])
	}

	_, _, err = run(t, request(t, map[string]interface{}{"action": "line", "csv": path, "line": 3}), fileConfig{})
	if !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
}

func TestHandleLines(t *testing.T) {
	path := writeFixture(t, "data.txt", "a\nb\nc\n")
	resp, _, err := run(t, request(t, map[string]interface{}{"action": "lines", "csv": path, "lines": []int{2, 0}}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := resp["lines"]; !reflect.DeepEqual(got, []interface{}{"c", "a"}) {
		t.Errorf("lines = %v", got)
	}
}

func TestHandleRow(t *testing.T) {
	path := writeFixture(t, "people.csv", "id,name\n1,Alice\n2,\"Smith, John\"\n")

	_, raw, err := run(t, request(t, map[string]interface{}{"action": "row", "csv": path, "row": 1}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"row":{"id":"2","name":"Smith, John"},"status":"ok"}` + "\n"; raw != want {
		t.Errorf("output = %s, want %s", raw, want)
	}

	_, raw, err = run(t, request(t, map[string]interface{}{"action": "rows", "csv": path, "rows": []int{1, 0}, "format": "csv"}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "\"id\",\"name\"\n\"2\",\"Smith, John\"\n\"1\",\"Alice\"\n"; raw != want {
		t.Errorf("csv output = %q, want %q", raw, want)
	}
}

func TestHandleRowHeaders(t *testing.T) {
	path := writeFixture(t, "raw.csv", "1,Alice\n")

	_, _, err := run(t, request(t, map[string]interface{}{"action": "row", "csv": path, "row": 0, "has_header": false}), fileConfig{})
	if !errors.Is(err, types.ErrState) {
		t.Fatalf("got %v, want ErrState", err)
	}

	resp, _, err := run(t, request(t, map[string]interface{}{
		"action":     "row",
		"csv":        path,
		"row":        0,
		"has_header": false,
		"headers":    []string{"id", "name"},
	}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := resp["row"]; !reflect.DeepEqual(got, map[string]interface{}{"id": "1", "name": "Alice"}) {
		t.Errorf("row = %v", got)
	}
}

func TestHandleCountAndIndex(t *testing.T) {
	path := writeFixture(t, "data.txt", "a\nb\ntail")

	resp, _, err := run(t, request(t, map[string]interface{}{"action": "count", "csv": path}), fileConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if resp["count"] != float64(2) || resp["trailing_bytes"] != float64(4) {
		t.Errorf("count response = %v", resp)
	}

	out := filepath.Join(t.TempDir(), "data.lidx")
	if _, _, err := run(t, request(t, map[string]interface{}{"action": "index", "csv": path, "out": out}), fileConfig{}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	idx, err := index.ReadSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 || idx.TrailingBytes() != 4 {
		t.Errorf("snapshot len=%d trailing=%d", idx.Len(), idx.TrailingBytes())
	}
}

func TestHandleErrors(t *testing.T) {
	path := writeFixture(t, "data.txt", "a\n")
	tests := []struct {
		name string
		req  map[string]interface{}
	}{
		{"no action", map[string]interface{}{"csv": path}},
		{"no csv", map[string]interface{}{"action": "line"}},
		{"unknown action", map[string]interface{}{"action": "explode", "csv": path}},
		{"index without out", map[string]interface{}{"action": "index", "csv": path}},
		{"line missing", map[string]interface{}{"action": "line", "csv": path}},
		{"line fractional", map[string]interface{}{"action": "line", "csv": path, "line": 0.5}},
		{"line not a number", map[string]interface{}{"action": "line", "csv": path, "line": "0"}},
		{"line too large", map[string]interface{}{"action": "line", "csv": path, "line": 1e300}},
		{"lines missing", map[string]interface{}{"action": "lines", "csv": path}},
		{"lines not an array", map[string]interface{}{"action": "lines", "csv": path, "lines": 0}},
		{"lines string item", map[string]interface{}{"action": "lines", "csv": path, "lines": []interface{}{"0", 0}}},
		{"lines fractional item", map[string]interface{}{"action": "lines", "csv": path, "lines": []interface{}{0, 0.7}}},
		{"row missing", map[string]interface{}{"action": "row", "csv": path, "has_header": false, "headers": []string{"a"}}},
		{"row fractional", map[string]interface{}{"action": "row", "csv": path, "row": 1.7, "has_header": false, "headers": []string{"a"}}},
		{"rows missing", map[string]interface{}{"action": "rows", "csv": path, "has_header": false, "headers": []string{"a"}}},
		{"rows bool item", map[string]interface{}{"action": "rows", "csv": path, "rows": []interface{}{true}, "has_header": false, "headers": []string{"a"}}},
		{"headers not strings", map[string]interface{}{"action": "row", "csv": path, "row": 0, "has_header": false, "headers": []interface{}{"a", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw, err := run(t, request(t, tt.req), fileConfig{})
			if err == nil {
				t.Errorf("expected an error, got %v", resp)
			}
			if raw != "" {
				t.Errorf("nothing should be written on error, got %q", raw)
			}
		})
	}

	_, _, err := run(t, request(t, map[string]interface{}{"action": "line", "csv": path, "endline": "\r\n"}), fileConfig{})
	if !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("got %v, want ErrConfiguration", err)
	}
}

func TestFileConfig(t *testing.T) {
	cfgPath := writeFixture(t, "csvseek.yaml", "field_delimiter: \";\"\nquote_char: \"'\"\nhas_header: false\nworkers: 3\n")
	defaults, err := loadFileConfig(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if defaults.FieldDelimiter != ";" || defaults.QuoteChar != "'" || defaults.Workers != 3 {
		t.Fatalf("defaults = %+v", defaults)
	}
	if defaults.HasHeader == nil || *defaults.HasHeader {
		t.Fatalf("has_header not read: %+v", defaults)
	}

	path := writeFixture(t, "semi.csv", "1;'a;b'\n")
	resp, _, err := run(t, request(t, map[string]interface{}{
		"action":  "row",
		"csv":     path,
		"row":     0,
		"headers": []string{"id", "val"},
	}), defaults)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp["row"]; !reflect.DeepEqual(got, map[string]interface{}{"id": "1", "val": "a;b"}) {
		t.Errorf("row = %v", got)
	}

	cfg := requestConfig(map[string]interface{}{"sep": "|", "has_header": true}, defaults)
	if cfg.FieldDelimiter != "|" || !cfg.HasHeader || cfg.Workers != 3 {
		t.Errorf("request did not override file config: %+v", cfg)
	}

	if _, err := loadFileConfig(writeFixture(t, "bad.yaml", "workers: [")); err == nil {
		t.Error("bad yaml accepted")
	}
	if empty, err := loadFileConfig(""); err != nil || empty.Workers != 0 {
		t.Errorf("empty path = %+v, %v", empty, err)
	}
}
