// Package extract turns a normalized email into a flight record, either by
// asking a generation service or with the offline heuristic.
package extract

import (
	"context"
	"fmt"

	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/extract/heuristic"
	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/llm"
)

// Strategy names accepted by config
const (
	StrategyModel     = "model"
	StrategyHeuristic = "heuristic"
)

// Extractor produces a flight record from an email
type Extractor interface {
	Name() string
	Extract(ctx context.Context, e *email.Email) (*Result, error)
}

// Result of one extraction. When Failure is set the reply could not be
// decoded and Record is empty.
type Result struct {
	Record    flight.Record
	Failure   *llm.ParseError
	Fragments []heuristic.Fragment // heuristic strategy only
	Raw       string               // model reply, verbatim
}

// Failed reports whether the generation reply was unusable
func (r *Result) Failed() bool {
	return r.Failure != nil
}

// New returns the extractor for the named strategy. gen may be nil for
// the heuristic strategy; opts apply to the model strategy only.
func New(strategy string, gen llm.Generator, opts ...ModelOption) (Extractor, error) {
	switch strategy {
	case StrategyModel, "":
		if gen == nil {
			return nil, fmt.Errorf("model strategy requires a generator")
		}
		return NewModel(gen, opts...), nil
	case StrategyHeuristic:
		return NewHeuristic(), nil
	default:
		return nil, fmt.Errorf("unknown extract strategy: %s", strategy)
	}
}
