package headrag

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  Embedder
	completer Completer

	windowSize  int
	overlap     int
	concurrency int

	defaultTopK int
	maxTopK     int

	retries         int
	retryInitial    time.Duration
	retryMax        time.Duration
	evalConcurrency int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the text generation provider used for headers,
// answers and evaluation. Required.
func WithCompleter(cm Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cm
	})
}

// WithChunking sets the window size and overlap, in characters.
// Defaults: 1000 and 200.
func WithChunking(windowSize, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.windowSize = windowSize
		c.overlap = overlap
	})
}

// WithConcurrency bounds parallel header and embedding calls during indexing.
// Default: 8.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithTopK sets the default and maximum number of chunks returned by a search.
// Defaults: 5 and 100.
func WithTopK(defaultTopK, maxTopK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = defaultTopK
		c.maxTopK = maxTopK
	})
}

// WithRetry retries transient provider failures with exponential backoff.
// attempts counts the first call; 1 disables retries. Default: 4, 500ms, 8s.
func WithRetry(attempts int, initial, maxInterval time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retries = attempts
		c.retryInitial = initial
		c.retryMax = maxInterval
	})
}

// WithEvaluationConcurrency bounds parallel cases in RunEvaluation. Default: 4.
func WithEvaluationConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.evalConcurrency = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
