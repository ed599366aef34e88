package parser

// Grammar mirrors the teacher's dsl.Grammar shape (a top-level struct built
// once via participle.MustBuild[Grammar]) but describes a single Cypher
// statement: an ordered sequence of clauses (spec §3.3, §4.1).
type grammarQuery struct {
	Clauses []*grammarClause `parser:"@@+"`
}

type grammarClause struct {
	Match    *grammarMatch    `parser:"(  @@"`
	Unwind   *grammarUnwind   `parser:" | @@"`
	Create   *grammarCreate   `parser:" | @@"`
	Merge    *grammarMerge    `parser:" | @@"`
	Set      *grammarSet      `parser:" | @@"`
	Remove   *grammarRemove   `parser:" | @@"`
	Delete   *grammarDelete   `parser:" | @@"`
	With     *grammarWith     `parser:" | @@"`
	Return   *grammarReturn   `parser:" | @@)"`
}

type grammarMatch struct {
	Optional bool            `parser:"@\"OPTIONAL\"?"`
	_        string          `parser:"\"MATCH\""`
	Patterns []*grammarPath  `parser:"@@ ( \",\" @@ )*"`
	Where    *grammarExpr    `parser:"( \"WHERE\" @@ )?"`
}

type grammarUnwind struct {
	_     string       `parser:"\"UNWIND\""`
	Expr  *grammarExpr `parser:"@@"`
	_     string       `parser:"\"AS\""`
	Alias string       `parser:"@Ident"`
}

type grammarCreate struct {
	_        string         `parser:"\"CREATE\""`
	Patterns []*grammarPath `parser:"@@ ( \",\" @@ )*"`
}

type grammarMerge struct {
	_        string           `parser:"\"MERGE\""`
	Pattern  *grammarPath     `parser:"@@"`
	OnCreate *grammarSetItems `parser:"( \"ON\" \"CREATE\" \"SET\" @@ )?"`
	OnMatch  *grammarSetItems `parser:"( \"ON\" \"MATCH\" \"SET\" @@ )?"`
}

type grammarSet struct {
	_     string           `parser:"\"SET\""`
	Items *grammarSetItems `parser:"@@"`
}

type grammarSetItems struct {
	Items []*grammarSetItem `parser:"@@ ( \",\" @@ )*"`
}

// grammarSetItem covers `n.prop = expr`, `n = {...}`, `n += {...}`, and
// `n:Label:Label2`.
type grammarSetItem struct {
	Variable string        `parser:"@Ident"`
	Property *string       `parser:"( \".\" @Ident"`
	Labels   []string      `parser:"| ( \":\" @Ident )+ )?"`
	Additive bool          `parser:"( @\"+=\""`
	Eq       bool          `parser:"| @\"=\" )?"`
	Value    *grammarExpr  `parser:"@@?"`
}

type grammarRemove struct {
	_     string              `parser:"\"REMOVE\""`
	Items []*grammarRemoveItem `parser:"@@ ( \",\" @@ )*"`
}

type grammarRemoveItem struct {
	Variable string   `parser:"@Ident"`
	Property *string  `parser:"( \".\" @Ident"`
	Labels   []string `parser:"| ( \":\" @Ident )+ )"`
}

type grammarDelete struct {
	Detach bool           `parser:"@\"DETACH\"?"`
	_      string         `parser:"\"DELETE\""`
	Items  []*grammarExpr `parser:"@@ ( \",\" @@ )*"`
}

type grammarWith struct {
	_        string             `parser:"\"WITH\""`
	Distinct bool               `parser:"@\"DISTINCT\"?"`
	Star     bool               `parser:"( @\"*\""`
	Items    []*grammarProjItem `parser:"| @@ ( \",\" @@ )* )"`
	Where    *grammarExpr       `parser:"( \"WHERE\" @@ )?"`
	OrderBy  []*grammarOrderItem `parser:"( \"ORDER\" \"BY\" @@ ( \",\" @@ )* )?"`
	Skip     *grammarExpr       `parser:"( \"SKIP\" @@ )?"`
	Limit    *grammarExpr       `parser:"( \"LIMIT\" @@ )?"`
}

type grammarReturn struct {
	_        string              `parser:"\"RETURN\""`
	Distinct bool                `parser:"@\"DISTINCT\"?"`
	Star     bool                `parser:"( @\"*\""`
	Items    []*grammarProjItem  `parser:"| @@ ( \",\" @@ )* )"`
	OrderBy  []*grammarOrderItem `parser:"( \"ORDER\" \"BY\" @@ ( \",\" @@ )* )?"`
	Skip     *grammarExpr        `parser:"( \"SKIP\" @@ )?"`
	Limit    *grammarExpr        `parser:"( \"LIMIT\" @@ )?"`
}

type grammarProjItem struct {
	Expr  *grammarExpr `parser:"@@"`
	Alias string       `parser:"( \"AS\" @Ident )?"`
}

type grammarOrderItem struct {
	Expr descOrAsc `parser:"@@"`
}

type descOrAsc struct {
	Expr *grammarExpr `parser:"@@"`
	Desc bool         `parser:"( @( \"DESC\" | \"DESCENDING\" )"`
	Asc  bool         `parser:"| @( \"ASC\" | \"ASCENDING\" ) )?"`
}

// ---- Patterns ----

type grammarPath struct {
	Variable *string              `parser:"( @Ident \"=\" )?"`
	Head     *grammarNodePattern  `parser:"@@"`
	Tail     []*grammarPathTail   `parser:"@@*"`
}

type grammarPathTail struct {
	Rel  *grammarRelPattern  `parser:"@@"`
	Node *grammarNodePattern `parser:"@@"`
}

type grammarNodePattern struct {
	_        string           `parser:"\"(\""`
	Variable *string          `parser:"@Ident?"`
	Labels   []string         `parser:"( \":\" @Ident )*"`
	Props    *grammarMapLit   `parser:"@@?"`
	_        string           `parser:"\")\""`
}

// grammarRelPattern captures both arrowheads; exactly one of LeftArrow /
// RightArrow (or neither, for an undirected `-...-`) is set by the parser.
type grammarRelPattern struct {
	LeftArrow  bool              `parser:"( @\"<-\" | \"-\" )"`
	_          string            `parser:"\"[\"?"`
	Variable   *string           `parser:"@Ident?"`
	Types      []string          `parser:"( \":\" @Ident ( \"|\" @Ident )* )?"`
	Length     *grammarLength    `parser:"@@?"`
	Props      *grammarMapLit    `parser:"@@?"`
	_          string            `parser:"\"]\"?"`
	RightArrow bool              `parser:"( @\"->\" | \"-\" )"`
}

type grammarLength struct {
	_   string `parser:"\"*\""`
	Min *int   `parser:"@Int?"`
	Dot bool   `parser:"( @\"..\""`
	Max *int   `parser:"@Int? )?"`
}

// ---- Expressions (precedence climbing, lowest to highest) ----

type grammarExpr struct {
	Or *grammarOrExpr `parser:"@@"`
}

type grammarOrExpr struct {
	Left  *grammarXorExpr   `parser:"@@"`
	Rest  []*grammarXorExpr `parser:"( \"OR\" @@ )*"`
}

type grammarXorExpr struct {
	Left *grammarAndExpr   `parser:"@@"`
	Rest []*grammarAndExpr `parser:"( \"XOR\" @@ )*"`
}

type grammarAndExpr struct {
	Left *grammarNotExpr   `parser:"@@"`
	Rest []*grammarNotExpr `parser:"( \"AND\" @@ )*"`
}

type grammarNotExpr struct {
	Nots int                  `parser:"@\"NOT\"*"`
	Cmp  *grammarComparison   `parser:"@@"`
}

// grammarComparison handles chained comparisons and the postfix/unary
// string & null predicates (IS NULL, IN, STARTS WITH, ...).
type grammarComparison struct {
	Left *grammarAdd            `parser:"@@"`
	Ops  []*grammarComparisonOp `parser:"@@*"`
}

type grammarComparisonOp struct {
	Op        string      `parser:"( @( \"=\" | \"<>\" | \"<=\" | \">=\" | \"<\" | \">\" | \"=~\" )"`
	Right     *grammarAdd `parser:"  @@"`
	InOp      bool        `parser:"| @\"IN\" "`
	InRight   *grammarAdd `parser:"  @@"`
	StartsOp  bool        `parser:"| @\"STARTS\""`
	_         string      `parser:"  \"WITH\""`
	StartsVal *grammarAdd `parser:"  @@"`
	IsNullOp  bool        `parser:"| @\"IS\""`
	IsNot     bool        `parser:"  @\"NOT\"?"`
	_         string      `parser:"  \"NULL\" )"`
}

type grammarAdd struct {
	Left *grammarMul         `parser:"@@"`
	Rest []*grammarAddFollow `parser:"@@*"`
}

type grammarAddFollow struct {
	Op    string      `parser:"@( \"+\" | \"-\" )"`
	Right *grammarMul `parser:"@@"`
}

type grammarMul struct {
	Left *grammarPow         `parser:"@@"`
	Rest []*grammarMulFollow `parser:"@@*"`
}

type grammarMulFollow struct {
	Op    string      `parser:"@( \"*\" | \"/\" | \"%\" )"`
	Right *grammarPow `parser:"@@"`
}

type grammarPow struct {
	Left  *grammarUnary `parser:"@@"`
	Right *grammarPow   `parser:"( \"^\" @@ )?"`
}

type grammarUnary struct {
	Neg    bool             `parser:"@\"-\"?"`
	Postfix *grammarPostfix `parser:"@@"`
}

// grammarPostfix chains property access (`.prop`) after an atom.
type grammarPostfix struct {
	Atom  *grammarAtom `parser:"@@"`
	Props []string     `parser:"( \".\" @Ident )*"`
}

type grammarAtom struct {
	Literal  *grammarLiteral   `parser:"( @@"`
	Param    *string           `parser:"| @Param"`
	Case     *grammarCase      `parser:"| @@"`
	Exists   *grammarSubquery  `parser:"| \"EXISTS\" @@"`
	Count    *grammarSubquery  `parser:"| \"COUNT\" @@"`
	List     *grammarListLit   `parser:"| @@"`
	Map      *grammarMapLit    `parser:"| @@"`
	Func     *grammarFuncCall  `parser:"| @@"`
	Variable *string           `parser:"| @Ident"`
	Paren    *grammarExpr      `parser:"| \"(\" @@ \")\" )"`
}

type grammarLiteral struct {
	Null  bool     `parser:"(  @\"NULL\""`
	True  bool     `parser:"|  @\"TRUE\""`
	False bool     `parser:"|  @\"FALSE\""`
	Hex   *string  `parser:"|  @Hex"`
	Octal *string  `parser:"|  @Octal"`
	Float *float64 `parser:"|  @Float"`
	Int   *string  `parser:"|  @Int"`
	Str   *string  `parser:"|  @String )"`
}

type grammarListLit struct {
	_     string         `parser:"\"[\""`
	Items []*grammarExpr `parser:"( @@ ( \",\" @@ )* )?"`
	_     string         `parser:"\"]\""`
}

type grammarMapLit struct {
	_      string         `parser:"\"{\""`
	Keys   []string       `parser:"( @Ident \":\""`
	Values []*grammarExpr `parser:"  @@ ( \",\" @Ident \":\" @@ )* )?"`
	_      string         `parser:"\"}\""`
}

type grammarFuncCall struct {
	Name     string         `parser:"@Ident \"(\""`
	Distinct bool           `parser:"@\"DISTINCT\"?"`
	Star     bool           `parser:"( @\"*\""`
	Args     []*grammarExpr `parser:"| ( @@ ( \",\" @@ )* )? )"`
	_        string         `parser:"\")\""`
}

type grammarCase struct {
	_    string                `parser:"\"CASE\""`
	Test *grammarExpr          `parser:"@@?"`
	Alts []*grammarCaseAlt     `parser:"( \"WHEN\" @@ )+"`
	Else *grammarExpr          `parser:"( \"ELSE\" @@ )?"`
	_    string                `parser:"\"END\""`
}

type grammarCaseAlt struct {
	When *grammarExpr `parser:"@@"`
	_    string       `parser:"\"THEN\""`
	Then *grammarExpr `parser:"@@"`
}

type grammarSubquery struct {
	_     string        `parser:"\"{\""`
	Query *grammarQuery `parser:"@@"`
	_     string        `parser:"\"}\""`
}
