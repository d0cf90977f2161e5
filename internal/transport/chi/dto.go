package chi

import (
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
	"github.com/kailas-cloud/headrag/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/headrag/internal/usecase/health"
)

// SearchRequest is the body of POST /v1/search and POST /v1/ask.
type SearchRequest struct {
	Query    string   `json:"query"`
	TopK     *int     `json:"top_k,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
}

// ChunkItem is one ranked chunk.
type ChunkItem struct {
	StartOffset int     `json:"start_offset"`
	Length      int     `json:"length"`
	Header      string  `json:"header"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Items []ChunkItem `json:"items"`
	Total int         `json:"total"`
}

// AskResponse is the body of a successful ask.
type AskResponse struct {
	Answer  string      `json:"answer"`
	Sources []ChunkItem `json:"sources"`
}

// EvaluateRequest is the body of POST /v1/evaluate.
// Without generated_answer the question runs through search and answer first.
type EvaluateRequest struct {
	Question        string `json:"question"`
	IdealAnswer     string `json:"ideal_answer"`
	GeneratedAnswer string `json:"generated_answer,omitempty"`
}

// EvaluateResponse is the body of a successful evaluation.
// Score is null when the evaluator output could not be parsed.
type EvaluateResponse struct {
	Question        string   `json:"question"`
	GeneratedAnswer string   `json:"generated_answer"`
	IdealAnswer     string   `json:"ideal_answer"`
	Status          string   `json:"status"`
	Score           *float64 `json:"score"`
	RawOutput       string   `json:"raw_output,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Chunks int               `json:"chunks"`
}

func chunkItems(rs []result.Result) []ChunkItem {
	items := make([]ChunkItem, len(rs))
	for i := range rs {
		c := rs[i].Chunk()
		items[i] = ChunkItem{
			StartOffset: c.StartOffset(),
			Length:      c.Length(),
			Header:      c.Header(),
			Text:        c.Text(),
			Score:       rs[i].Score(),
		}
	}
	return items
}

func evaluateResponse(res evaluation.CaseResult) EvaluateResponse {
	rec := res.Outcome.Value()
	resp := EvaluateResponse{
		Question:        res.Case.Question,
		GeneratedAnswer: res.Answer,
		IdealAnswer:     res.Case.IdealAnswer,
		Status:          string(rec.Status()),
		RawOutput:       rec.RawOutput(),
	}
	if score, ok := rec.Score(); ok {
		v := float64(score)
		resp.Score = &v
	}
	return resp
}

func healthResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks, Chunks: r.Chunks}
}
