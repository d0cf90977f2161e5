package evaluation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Score is the categorical rubric judgment.
type Score float64

// Rubric levels.
const (
	Incorrect Score = 0
	Partial   Score = 0.5
	Correct   Score = 1
)

// String renders the score as one of the rubric literals.
func (s Score) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// rubricLiterals are the spellings accepted for each rubric level.
var rubricLiterals = map[string]Score{
	"0":   Incorrect,
	"0.0": Incorrect,
	"0.5": Partial,
	".5":  Partial,
	"1":   Correct,
	"1.0": Correct,
}

// ParseScore coerces raw evaluator output to a rubric level.
// Surrounding whitespace, quotes, backticks and a trailing period are tolerated;
// anything else that is not a plain 0, 0.5 or 1 literal is domain.ErrUnparsableScore.
func ParseScore(raw string) (Score, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")

	score, ok := rubricLiterals[s]
	if !ok {
		return 0, fmt.Errorf("%q is not one of 0, 0.5, 1: %w", raw, domain.ErrUnparsableScore)
	}
	return score, nil
}

// Status tells whether a record carries a score.
type Status string

// Record statuses.
const (
	StatusScored   Status = "scored"
	StatusUnscored Status = "unscored"
)

// Record is the result of evaluating one generated answer against its reference.
type Record struct {
	query           string
	generatedAnswer string
	referenceAnswer string
	score           Score
	status          Status
	rawOutput       string
	err             error
}

// NewScored creates a scored record.
func NewScored(query, generated, reference string, score Score, raw string) Record {
	return Record{
		query: query, generatedAnswer: generated, referenceAnswer: reference,
		score: score, status: StatusScored, rawOutput: raw,
	}
}

// NewUnscored creates an inconclusive record. It never carries a score.
func NewUnscored(query, generated, reference, raw string, err error) Record {
	return Record{
		query: query, generatedAnswer: generated, referenceAnswer: reference,
		status: StatusUnscored, rawOutput: raw, err: err,
	}
}

// Query returns the evaluated question.
func (r Record) Query() string { return r.query }

// GeneratedAnswer returns the synthesized answer.
func (r Record) GeneratedAnswer() string { return r.generatedAnswer }

// ReferenceAnswer returns the ideal answer.
func (r Record) ReferenceAnswer() string { return r.referenceAnswer }

// Status returns whether the record was scored.
func (r Record) Status() Status { return r.status }

// Scored reports whether the record carries a rubric score.
func (r Record) Scored() bool { return r.status == StatusScored }

// Score returns the rubric score and false for unscored records.
func (r Record) Score() (Score, bool) { return r.score, r.status == StatusScored }

// RawOutput returns the evaluator's verbatim output.
func (r Record) RawOutput() string { return r.rawOutput }

// Err returns why the record is unscored.
func (r Record) Err() error { return r.err }

// Case is one reference question with its ideal answer.
type Case struct {
	Question    string `json:"question" yaml:"question"`
	IdealAnswer string `json:"ideal_answer" yaml:"ideal_answer"`
}
