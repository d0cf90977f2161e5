package openai

import (
	"time"

	"github.com/kailas-cloud/headrag/internal/metrics"
)

// providerCall records the metrics of one request to the provider.
type providerCall struct {
	op       string
	provider string
	model    string
	start    time.Time
}

func startCall(op, provider, model string) *providerCall {
	return &providerCall{op: op, provider: provider, model: model, start: time.Now()}
}

func (c *providerCall) failed(errType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(c.op, c.provider, c.model, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(c.op, c.provider, c.model, errType).Inc()
}

// succeeded records latency and token usage; completion is 0 for embeddings.
func (c *providerCall) succeeded(prompt, completion, total int) time.Duration {
	d := time.Since(c.start)
	metrics.ProviderRequestsTotal.WithLabelValues(c.op, c.provider, c.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(c.op, c.provider, c.model).Observe(d.Seconds())

	if total <= 0 {
		return d
	}
	tokens := metrics.ProviderTokensTotal
	tokens.WithLabelValues(c.op, c.provider, c.model, "prompt").Add(float64(prompt))
	if completion > 0 {
		tokens.WithLabelValues(c.op, c.provider, c.model, "completion").Add(float64(completion))
	}
	tokens.WithLabelValues(c.op, c.provider, c.model, "total").Add(float64(total))
	return d
}
