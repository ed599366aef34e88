// Package engine is the query-pipeline façade the embedding API calls
// into: parse, plan, optimize, execute, with every internal/cerr fault
// crossing the planner/executor boundary also tagged with a
// gopkg.in/src-d/go-errors.v1 Kind sentinel, grounded on
// dolthub-go-mysql-server's auth package convention of package-level
// `var ErrX = errors.NewKind(...)` sentinels checked with `ErrX.Is(err)`.
// Adapted from the teacher's InferenceEngine (a thin wrapper turning one
// Query.Execute(ctx, graph) call into the handle-level API) generalized
// from "one query object, one Execute call" to the full
// parse→plan→optimize→execute pipeline.
package engine

import (
	"context"
	"errors"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/cylog"
	"github.com/cypherdb/cypherdb/internal/executor"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/optimizer"
	"github.com/cypherdb/cypherdb/internal/parser"
	"github.com/cypherdb/cypherdb/internal/planner"
	"github.com/cypherdb/cypherdb/internal/stats"
	"github.com/cypherdb/cypherdb/internal/value"
)

// Sentinel Kinds mirroring internal/cerr's taxonomy, exposed so a caller
// that doesn't want to import internal/cerr directly can still match
// faults with errors.Is against a stable, documented Kind.
var (
	ErrSyntax       = goerrors.NewKind("syntax error: %s")
	ErrType         = goerrors.NewKind("type error: %s")
	ErrNotFound     = goerrors.NewKind("not found: %s")
	ErrConstraint   = goerrors.NewKind("constraint violation: %s")
	ErrStorage      = goerrors.NewKind("storage error: %s")
	ErrCancelled    = goerrors.NewKind("query cancelled: %s")
	ErrInternal     = goerrors.NewKind("internal error: %s")
)

func wrap(err error) error {
	if err == nil {
		return nil
	}
	kind, ok := cerr.KindOf(err)
	if !ok {
		kind = cerr.KindInternalError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = cerr.KindCancelled
		}
		err = cerr.New(kind, "%v", err)
	}
	switch kind {
	case cerr.KindSyntaxError:
		return ErrSyntax.Wrap(err, err.Error())
	case cerr.KindTypeError, cerr.KindVariableTypeConflict, cerr.KindOverflow, cerr.KindDivisionByZero:
		return ErrType.Wrap(err, err.Error())
	case cerr.KindNotFound:
		return ErrNotFound.Wrap(err, err.Error())
	case cerr.KindConstraintViolation:
		return ErrConstraint.Wrap(err, err.Error())
	case cerr.KindStorageError:
		return ErrStorage.Wrap(err, err.Error())
	case cerr.KindCancelled:
		return ErrCancelled.Wrap(err, err.Error())
	default:
		return ErrInternal.Wrap(err, err.Error())
	}
}

// Engine binds a graph.Store to the compile pipeline: one Run call parses,
// plans, optimizes, and executes a single statement.
type Engine struct {
	Store  graph.Store
	Labels []string // distinct label names known for statistics, refreshed by the caller
	Types  []string // distinct relationship type names known for statistics
}

// New returns an Engine over store.
func New(store graph.Store) *Engine {
	return &Engine{Store: store}
}

// Run parses, plans, optimizes, and executes text against e.Store,
// returning the projected result columns and rows. Every error returned
// is both an *internal/cerr.Error (via errors.As) and matchable against
// this package's Err* sentinels (via errors.Is).
func (e *Engine) Run(ctx context.Context, text string, params map[string]value.Value) (*executor.ResultSet, error) {
	log := cylog.Query(text)

	q, err := parser.Parse(text)
	if err != nil {
		log.WithError(err).Debug("parse failed")
		return nil, wrap(err)
	}

	p := planner.New()
	op, err := p.Plan(q)
	if err != nil {
		log.WithError(err).Debug("planning failed")
		return nil, wrap(err)
	}

	snap := stats.Collect(e.Store, e.Labels, e.Types)
	op = optimizer.Optimize(op, snap)

	rs, err := executor.Execute(ctx, op, e.Store, params, executor.ResultColumns(q))
	if err != nil {
		log.WithError(err).Debug("execution failed")
		return nil, wrap(err)
	}
	log.WithField("rows", len(rs.Rows)).Debug("query completed")
	return rs, nil
}
