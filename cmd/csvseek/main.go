package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"runtime/pprof"

	"github.com/iamhimansu/csvseek/pkg/csvseek/parser"
	"github.com/iamhimansu/csvseek/pkg/csvseek/reader"
	"github.com/iamhimansu/csvseek/pkg/csvseek/utils"
)

func main() {
	requestJSON := flag.String("request", "", "JSON request payload")
	configPath := flag.String("config", "", "YAML file with dialect defaults")
	cpuProfile := flag.String("cpuprofile", "", "Write cpu profile to file")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	var rawRequest map[string]interface{}
	var err error

	if *requestJSON != "" {
		err = json.Unmarshal([]byte(*requestJSON), &rawRequest)
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			err = json.NewDecoder(os.Stdin).Decode(&rawRequest)
		} else {
			flag.Usage()
			os.Exit(1)
		}
	}
	if err != nil {
		fatalError("Invalid JSON request: " + err.Error())
	}

	defaults, err := loadFileConfig(*configPath)
	if err != nil {
		fatalError(err.Error())
	}

	logger := utils.NewStandardLogger(defaults.Verbose || getBool(rawRequest, "verbose"))
	if err := handle(context.Background(), rawRequest, defaults, logger, os.Stdout); err != nil {
		logger.Error("%v", err)
		fatalError(err.Error())
	}
}

func handle(ctx context.Context, req map[string]interface{}, defaults fileConfig, logger utils.Logger, w io.Writer) error {
	action, ok := req["action"].(string)
	if !ok {
		return fmt.Errorf("action required")
	}
	path := getString(req, "csv")
	if path == "" {
		return fmt.Errorf("csv path required")
	}

	cfg := requestConfig(req, defaults)
	cfg.Logger = logger

	switch action {
	case "line":
		return handleLine(req, path, cfg, w)
	case "lines":
		return handleLines(ctx, req, path, cfg, w)
	case "row", "rows":
		return handleRows(ctx, req, path, cfg, w)
	case "count":
		return handleCount(path, cfg, w)
	case "index":
		return handleIndex(req, path, cfg, w)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
}

func requestConfig(req map[string]interface{}, defaults fileConfig) reader.Config {
	cfg := reader.DefaultConfig()
	defaults.apply(&cfg)

	if v := getString(req, "endline"); v != "" {
		cfg.LineDelimiter = v
	}
	if v := getString(req, "sep"); v != "" {
		cfg.FieldDelimiter = v
	}
	if v := getString(req, "quote"); v != "" {
		cfg.QuoteChar = v
	}
	if v, ok := req["has_header"].(bool); ok {
		cfg.HasHeader = v
	}
	if v := getInt(req, "workers"); v > 0 {
		cfg.Workers = v
	}
	return cfg
}

func handleLine(req map[string]interface{}, path string, cfg reader.Config, w io.Writer) error {
	n, err := requireInt(req, "line")
	if err != nil {
		return err
	}
	r, err := reader.New(path, reader.WithConfig(cfg))
	if err != nil {
		return err
	}
	line, err := r.GetLine(n)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{"status": "ok", "line": string(line)})
}

func handleLines(ctx context.Context, req map[string]interface{}, path string, cfg reader.Config, w io.Writer) error {
	numbers, err := getIntList(req, "lines")
	if err != nil {
		return err
	}
	r, err := reader.New(path, reader.WithConfig(cfg))
	if err != nil {
		return err
	}
	raw, err := r.GetLines(ctx, numbers)
	if err != nil {
		return err
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	return writeJSON(w, map[string]interface{}{"status": "ok", "lines": lines})
}

func handleRows(ctx context.Context, req map[string]interface{}, path string, cfg reader.Config, w io.Writer) error {
	var numbers []int
	if getString(req, "action") == "row" {
		n, err := requireInt(req, "row")
		if err != nil {
			return err
		}
		numbers = []int{n}
	} else {
		var err error
		if numbers, err = getIntList(req, "rows"); err != nil {
			return err
		}
	}

	headers, err := getStringList(req, "headers")
	if err != nil {
		return err
	}

	r, err := reader.NewRowReader(path, reader.WithConfig(cfg))
	if err != nil {
		return err
	}
	if headers != nil {
		if err := r.SetHeaders(headers); err != nil {
			return err
		}
	}

	rows, err := r.GetRows(ctx, numbers)
	if err != nil {
		return err
	}

	if getString(req, "format") == "csv" {
		return writeCSV(r, rows, w)
	}
	if getString(req, "action") == "row" {
		return writeJSON(w, map[string]interface{}{"status": "ok", "row": rows[0]})
	}
	return writeJSON(w, map[string]interface{}{"status": "ok", "rows": rows})
}

func handleCount(path string, cfg reader.Config, w io.Writer) error {
	r, err := reader.New(path, reader.WithConfig(cfg))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"count":          r.Len(),
		"trailing_bytes": r.TrailingBytes(),
	})
}

func handleIndex(req map[string]interface{}, path string, cfg reader.Config, w io.Writer) error {
	out := getString(req, "out")
	if out == "" {
		return fmt.Errorf("out path required")
	}

	r, err := reader.New(path, reader.WithConfig(cfg))
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := r.WriteSnapshot(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{"status": "ok", "count": r.Len(), "out": out})
}

// writeCSV renders the header followed by the rows, every field quoted.
func writeCSV(r *reader.RowReader, rows []*reader.Row, w io.Writer) error {
	p, err := parser.New(r.Dialect())
	if err != nil {
		return err
	}
	term := []byte{r.Dialect().LineTerminator}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, r.Headers())
	for _, row := range rows {
		records = append(records, row.Values())
	}
	for _, rec := range records {
		line, err := p.Format(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(line, term...)); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

func fatalError(msg string) {
	resp := map[string]string{"status": "error", "error": msg}
	json.NewEncoder(os.Stdout).Encode(resp)
	os.Exit(1)
}

// Helpers
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	if v, ok := m[key].(int); ok {
		return v
	}
	return 0
}

func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// requireInt reads a whole number that the request must carry.
func requireInt(m map[string]interface{}, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%s required", key)
	}
	n, err := wholeNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getIntList reads a required array of whole numbers. Any bad item fails the
// whole request so positions never shift.
func getIntList(m map[string]interface{}, key string) ([]int, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s required", key)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array, got %T", key, v)
	}
	out := make([]int, len(raw))
	for i, item := range raw {
		n, err := wholeNumber(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = n
	}
	return out, nil
}

func wholeNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		// beyond 2^53 a JSON number no longer names one exact integer
		if math.Abs(n) > 1<<53 {
			return 0, fmt.Errorf("%v is out of range", n)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}

// getStringList reads an optional array of strings; nil when key is absent.
func getStringList(m map[string]interface{}, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array, got %T", key, v)
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: %v (%T) is not a string", key, i, item, item)
		}
		out[i] = s
	}
	return out, nil
}
