package datasets

import (
	"context"
	"os"
	"strings"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/executor"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/optimizer"
	"github.com/cypherdb/cypherdb/internal/parser"
	"github.com/cypherdb/cypherdb/internal/planner"
	"github.com/cypherdb/cypherdb/internal/stats"
)

// skipPrefixes are statement prefixes CypherLoader drops rather than
// executes: schema operations an embedded, single-process engine has no
// use for, per the Python original's CypherLoader.SKIP_PREFIXES.
var skipPrefixes = []string{
	"CREATE CONSTRAINT",
	"DROP CONSTRAINT",
	"CREATE INDEX",
	"DROP INDEX",
	"CALL",
}

// CypherLoader executes a multi-statement .cypher/.cql script against a
// store, statement by statement, skipping schema operations — adapted
// from graphforge.datasets.loaders.cypher.CypherLoader.
type CypherLoader struct{}

func (l *CypherLoader) Format() string { return "cypher" }

func (l *CypherLoader) Load(store graph.Store, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return cerr.New(cerr.KindStorageError, "opening dataset %s: %v", path, err)
	}
	for _, stmt := range splitStatements(string(buf)) {
		var kept []string
		for _, line := range strings.Split(stmt, "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), "//") {
				kept = append(kept, line)
			}
		}
		stmt = strings.TrimSpace(strings.Join(kept, "\n"))
		if stmt == "" {
			continue
		}
		upper := strings.ToUpper(stmt)
		skip := false
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(upper, prefix) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if err := runCypher(store, stmt); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements breaks a script into semicolon-delimited statements. A
// plain split (not string/comment-aware) matches the original loader's own
// documented limitation: it is correct for typical example-dataset
// scripts, not for arbitrary Cypher containing literal semicolons.
func splitStatements(script string) []string {
	return strings.Split(script, ";")
}

// runCypher plans and executes one statement against store with no
// parameters and no query timeout, used by loaders that need to replay a
// script rather than answer an interactive query.
func runCypher(store graph.Store, text string) error {
	q, err := parser.Parse(text)
	if err != nil {
		return err
	}
	p := planner.New()
	op, err := p.Plan(q)
	if err != nil {
		return err
	}
	snap := stats.Collect(store, nil, nil)
	op = optimizer.Optimize(op, snap)
	_, err = executor.Execute(context.Background(), op, store, nil, executor.ResultColumns(q))
	return err
}
