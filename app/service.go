// Package app exposes the analytical core as a catalog of named functions
// taking JSON arguments. Every transport (HTTP, MCP, CLI) calls through
// Service.
package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/population"
	"socialgap/internal/eligibility"
	"socialgap/internal/terms"
	"socialgap/internal/validation"
)

// Options tunes the service
type Options struct {
	Workers     int
	RankingTTL  time.Duration
	DefaultTopN int
}

// Service dispatches catalog calls against one loaded table
type Service struct {
	table      *population.Table
	analyzer   *eligibility.Analyzer
	translator *terms.Translator
	validator  *validation.Validator
	options    Options
	logger     *zap.Logger
}

// NewService creates a service over table. A nil dictionary uses the
// embedded one.
func NewService(table *population.Table, dict *terms.Dictionary, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dict == nil {
		dict = terms.DefaultDictionary()
	}
	return &Service{
		table: table,
		analyzer: eligibility.NewAnalyzer(table, eligibility.Options{
			Workers:    opts.Workers,
			RankingTTL: opts.RankingTTL,
		}, logger),
		translator: terms.NewTranslator(dict, logger),
		validator:  validation.NewValidator(logger),
		options:    opts,
		logger:     logger.Named("service"),
	}
}

// Table returns the loaded table
func (s *Service) Table() *population.Table {
	return s.table
}

type callIDKey struct{}

// WithCallID attaches a call id to ctx
func WithCallID(ctx context.Context, id core.CallID) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

// CallIDFrom returns the call id of ctx, creating one when absent
func CallIDFrom(ctx context.Context) core.CallID {
	if id, ok := ctx.Value(callIDKey{}).(core.CallID); ok && !id.IsEmpty() {
		return id
	}
	return core.NewCallID()
}

// Call runs the named function. Analysis failures are returned as errors;
// use NewErrorResult to serialize them.
func (s *Service) Call(ctx context.Context, name string, args Args) (any, error) {
	callID := CallIDFrom(ctx)
	logger := s.logger.With(zap.String("call_id", callID.String()), zap.String("function", name))

	fn, ok := Lookup(name)
	if !ok {
		err := &UnknownFunctionError{Name: name, Available: FunctionNames()}
		logger.Warn("unknown function")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := fn.run(ctx, s, args)
	if err != nil {
		logger.Warn("function failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	logger.Info("function completed", zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// QueryTranslation is the translation of a free-text query with its
// executability verdict and any vague terms found
type QueryTranslation struct {
	Translation   terms.Translation     `json:"translation"`
	Validation    validation.Report     `json:"validation"`
	Ambiguity     terms.AmbiguityReport `json:"ambiguity"`
	Clarification string                `json:"clarification,omitempty"`
}

// Translate maps query to criteria and validates it against the table
func (s *Service) Translate(query string) *QueryTranslation {
	tr := s.translator.Translate(query)
	ambiguity := s.translator.DetectAmbiguities(query)
	return &QueryTranslation{
		Translation:   tr,
		Validation:    s.validator.Validate(tr, s.table),
		Ambiguity:     ambiguity,
		Clarification: terms.ClarificationPrompt(ambiguity),
	}
}

// QueryResult is a free-text query answered by one catalog function
type QueryResult struct {
	*QueryTranslation
	Function string `json:"function"`
	Result   any    `json:"result"`
}

// Query translates query and runs it: eligibility-by-program when a
// program was recognized, population-segment otherwise. Queries without
// criteria fail as ambiguous; unknown fields fail as schema errors.
func (s *Service) Query(ctx context.Context, query string) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.NewInvalidArgumentError("query", "is required")
	}
	qt := s.Translate(query)

	switch qt.Validation.Failure {
	case validation.FailureNoCriteria:
		var options []string
		for _, amb := range qt.Ambiguity.Ambiguities {
			options = append(options, amb.Options...)
		}
		msg := qt.Validation.Message
		if qt.Clarification != "" {
			msg += "\n" + qt.Clarification
		}
		return nil, &AmbiguousQueryError{Message: msg, Alternatives: options}
	case validation.FailureInvalidFields:
		return nil, &core.FieldNotFoundError{Field: qt.Validation.InvalidFields[0], Available: qt.Validation.Available}
	}

	c := qt.Translation.Criteria
	result := &QueryResult{QueryTranslation: qt}
	var err error
	if c.Program != "" {
		result.Function = FnEligibilityByProgram
		result.Result, err = s.analyzer.Eligibility(c.Program, c)
	} else {
		result.Function = FnPopulationSegment
		result.Result, err = s.analyzer.Segment(c, 0)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("query answered",
		zap.String("call_id", CallIDFrom(ctx).String()),
		zap.String("function", result.Function),
		zap.Strings("phrases", qt.Translation.MatchedPhrases()))
	return result, nil
}
