package affinity

import (
	"context"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string
	matching  MatchingOptions
	extractor Extractor
	logger    *zap.Logger
}

// MatchingOptions tune the fuzzy matching engine. Zero values fall back
// to the engine defaults.
type MatchingOptions struct {
	AcceptanceThreshold float64
	Generosity          float64
	CategoryThreshold   float64
	CategoryGenerosity  float64
	MaxResults          int
	BestScoreWins       bool
	Institution         string
	InstitutionAbbr     string
}

// Extraction carries the language-model analysis of one transcript.
type Extraction struct {
	ProfessionalInterests   []string
	PersonalInterests       []string
	PhilanthropicPriorities []string
	Synopsis                string
}

// Extractor analyzes a transcript into categorized interest lists.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (Extraction, error)
}

// WithRedis sets the Redis (or Valkey) connection address.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithAddrs sets multiple database addresses (cluster mode).
func WithAddrs(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithCredentials sets the database username and logical database number.
func WithCredentials(username string, db int) Option {
	return func(c *clientConfig) {
		c.username = username
		c.db = db
	}
}

// WithKeyPrefix sets the storage key prefix (default "affinity:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithMatching sets the fuzzy matching options.
func WithMatching(opts MatchingOptions) Option {
	return func(c *clientConfig) {
		c.matching = opts
	}
}

// WithExtractor sets the interest extraction provider. Without one,
// interactions are matched from the transcript alone.
func WithExtractor(e Extractor) Option {
	return func(c *clientConfig) {
		c.extractor = e
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
