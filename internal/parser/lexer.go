// Package parser turns Cypher query text into an internal/ast.Query using a
// participle/v2 grammar, grounded on the teacher's dsl package lexer/grammar
// split (internal/dsl/grammar.go): a single ordered lexer.SimpleRule table
// feeding a struct-tag-driven grammar, built once as a process-wide
// singleton via participle.MustBuild.
package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// cypherLexer tokenizes Cypher source. Rule order matters: participle's
// simple lexer tries rules in order at each position, so multi-character
// operators must precede their single-character prefixes, and the keyword
// alternation must precede the identifier pattern.
var cypherLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Keyword", Pattern: `(?i)\b(MATCH|OPTIONAL|WHERE|CREATE|MERGE|ON|SET|REMOVE|DELETE|DETACH|WITH|RETURN|UNWIND|AS|ORDER|BY|ASC|ASCENDING|DESC|DESCENDING|SKIP|LIMIT|DISTINCT|AND|OR|XOR|NOT|IN|IS|NULL|TRUE|FALSE|CASE|WHEN|THEN|ELSE|END|EXISTS|COUNT)\b`},
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Octal", Pattern: `0[oO][0-7]+`},
	{Name: "Float", Pattern: `\d+\.\d+([eE][+-]?\d+)?|\d+[eE][+-]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"|'([^'\\]|\\.)*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Param", Pattern: `\$[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `->|<-|<>|<=|>=|=~|\+=|\.\.|[-=<>+*/%^.,:;()\[\]{}|]`},
	{Name: "Whitespace", Pattern: `\s+`},
})
