// Package pagination provides helpers for normalizing list-endpoint
// pagination parameters into limit/offset pairs.
package pagination

// Params represents pagination parameters supplied by the client.
// Both limit/offset and page/size styles are accepted; page/size is
// converted to limit/offset during Normalize.
type Params struct {
	Limit  int `query:"limit"  json:"limit,omitempty"`
	Offset int `query:"offset" json:"offset,omitempty"`

	// Page specifies the page number (1-based, used with Size).
	Page int `query:"page" json:"page,omitempty"`
	// Size specifies the number of items per page (used with Page).
	Size int `query:"size" json:"size,omitempty"`
}

// Config holds default pagination settings.
type Config struct {
	DefaultLimit int // Default limit when none specified
	MaxLimit     int // Maximum allowed limit
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 100,
		MaxLimit:     200,
	}
}

// Normalize applies default values and constraints to pagination parameters
// and resolves the page/size style into limit/offset.
func (p *Params) Normalize(cfg Config) {
	if p.Size > 0 || p.Page > 0 {
		if p.Size <= 0 {
			p.Size = cfg.DefaultLimit
		}
		if p.Page <= 0 {
			p.Page = 1
		}
		p.Limit = p.Size
		p.Offset = (p.Page - 1) * p.Size
	}

	if p.Limit <= 0 {
		p.Limit = cfg.DefaultLimit
	}
	if p.Limit > cfg.MaxLimit {
		p.Limit = cfg.MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ToLimitOffset returns the limit and offset values.
func (p *Params) ToLimitOffset() (limit, offset int) {
	return p.Limit, p.Offset
}
