package parser

import (
	"github.com/alecthomas/participle/v2"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
)

// cypherParser is built once at package init, mirroring the teacher's
// package-level participle.MustBuild[Grammar] singleton (internal/dsl).
var cypherParser = participle.MustBuild[grammarQuery](
	participle.Lexer(cypherLexer),
	participle.Unquote("String"),
	participle.UseLookahead(2),
	participle.Elide("Whitespace", "Comment"),
	participle.CaseInsensitive("Keyword"),
)

// Parse compiles Cypher query text into an ast.Query, or returns a
// cerr.Error of kind SyntaxError carrying the offending line/column.
func Parse(text string) (*ast.Query, error) {
	gq, err := cypherParser.ParseString("", text)
	if err != nil {
		if perr, ok := err.(participle.Error); ok {
			pos := perr.Position()
			return nil, cerr.NewAt(cerr.KindSyntaxError, pos.Line, pos.Column, "%s", perr.Message())
		}
		return nil, cerr.New(cerr.KindSyntaxError, "%s", err.Error())
	}
	return convertQuery(gq)
}
