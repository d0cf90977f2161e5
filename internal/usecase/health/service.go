package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the index cannot serve queries.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names as they appear in the report.
const (
	CheckIndex      = "index"
	CheckEmbedding  = "embedding"
	CheckCompletion = "completion"
	CheckCache      = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Chunks int
}

// Deps lists the components to check. Nil members are skipped.
type Deps struct {
	Index      IndexProvider
	Embedding  ProviderChecker
	Completion ProviderChecker
	Cache      CachePinger
}

// Service coordinates health checks.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Check runs health checks against all components.
// A missing index makes the report unhealthy; any other failure degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	r := Report{Status: Healthy, Checks: checks}

	if s.deps.Index != nil {
		if idx := s.deps.Index.Current(); idx != nil {
			checks[CheckIndex] = CheckOK
			r.Chunks = idx.Len()
		} else {
			checks[CheckIndex] = CheckError
		}
	}

	if s.deps.Embedding != nil {
		checks[CheckEmbedding] = result(s.deps.Embedding.HealthCheck(ctx))
	}
	if s.deps.Completion != nil {
		checks[CheckCompletion] = result(s.deps.Completion.HealthCheck(ctx))
	}
	if s.deps.Cache != nil {
		checks[CheckCache] = result(s.deps.Cache.Ping(ctx))
	}

	for _, v := range checks {
		if v == CheckError {
			r.Status = Degraded
			break
		}
	}
	if checks[CheckIndex] == CheckError {
		r.Status = Unhealthy
	}

	return r
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
