package reader

import (
	"fmt"
	"runtime"

	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
	"github.com/iamhimansu/csvseek/pkg/csvseek/utils"
)

// Config holds construction parameters. Delimiters are strings so that a
// caller passing more than one character gets ErrConfiguration instead of a
// silent truncation.
type Config struct {
	LineDelimiter  string
	FieldDelimiter string
	QuoteChar      string
	HasHeader      bool
	Workers        int
	Logger         utils.Logger
}

// DefaultConfig returns newline terminated, comma separated, double quoted
// input with a header row.
func DefaultConfig() Config {
	return Config{
		LineDelimiter:  string(rune(types.DefaultLineDelimiter)),
		FieldDelimiter: string(rune(types.DefaultFieldDelimiter)),
		QuoteChar:      string(rune(types.DefaultQuoteChar)),
		HasHeader:      true,
		Workers:        runtime.NumCPU(),
	}
}

type Option func(*Config)

// WithConfig replaces every setting at once.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

func WithLineDelimiter(s string) Option {
	return func(c *Config) {
		c.LineDelimiter = s
	}
}

func WithFieldDelimiter(s string) Option {
	return func(c *Config) {
		c.FieldDelimiter = s
	}
}

func WithQuoteChar(s string) Option {
	return func(c *Config) {
		c.QuoteChar = s
	}
}

// WithHeader controls whether line 0 of a RowReader names the fields.
func WithHeader(hasHeader bool) Option {
	return func(c *Config) {
		c.HasHeader = hasHeader
	}
}

// WithWorkers bounds the number of files open at once in GetLines and GetRows.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithLogger(l utils.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func buildConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = utils.NopLogger()
	}
	return cfg
}

// Dialect validates the delimiter settings and bundles them.
func (c Config) Dialect() (types.Dialect, error) {
	line, err := types.ParseDelimiter("line delimiter", c.LineDelimiter)
	if err != nil {
		return types.Dialect{}, err
	}
	field, err := types.ParseDelimiter("field delimiter", c.FieldDelimiter)
	if err != nil {
		return types.Dialect{}, err
	}
	quote, err := types.ParseDelimiter("quote character", c.QuoteChar)
	if err != nil {
		return types.Dialect{}, err
	}

	d := types.Dialect{
		FieldDelimiter: field,
		QuoteChar:      quote,
		LineTerminator: line,
		Quoting:        types.QuoteAll,
	}
	if err := d.Validate(); err != nil {
		return types.Dialect{}, err
	}
	return d, nil
}

func (c Config) validateWorkers() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", types.ErrConfiguration, c.Workers)
	}
	return nil
}
