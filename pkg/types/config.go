package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the query form and its HTTP client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the full URL of the query service (e.g. "http://localhost:8000/query/").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// TopK is the result-count limit sent with every query (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// FetchConfig holds settings for harvesting papers from arXiv.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the arXiv search term, matched against all fields.
	Query string `json:"query" yaml:"query"`

	// Total is the number of papers to page through (default 30000).
	Total int `json:"total" yaml:"total"`

	// BatchSize is the page size of each arXiv request (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Delay is the pause between consecutive batches (default 3s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// Attempts is the number of tries per batch before it is skipped (default 3).
	Attempts int `json:"attempts" yaml:"attempts"`

	// RetryDelay is the pause between attempts of the same batch (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/arxiv_papers.db").
	Path string `json:"path" yaml:"path"`
}

// IndexConfig holds settings for the retrieval index.
type IndexConfig struct {
	// Path is the index directory (default "data/papers.index").
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the query service.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists the CORS origins allowed to call the service.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// MaxTopK caps the top_k a caller may request (default 100).
	MaxTopK int `json:"max_top_k" yaml:"max_top_k"`
}

// UIConfig holds settings for the web front end.
type UIConfig struct {
	// Addr is the listen address (default ":3000").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Client ClientConfig `json:"client" yaml:"client"`
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Index  IndexConfig  `json:"index" yaml:"index"`
	Server ServerConfig `json:"server" yaml:"server"`
	UI     UIConfig     `json:"ui" yaml:"ui"`
}
