// Package sir defines the Static Intermediate Representation: a fully typed
// tree produced after inference, where every node carries a TypeTerm.
// Variables, parameters and operator results carry inferred types, but
// internal/sirbuild types attribute reads, calls to user functions and
// constructors, and method calls it does not recognise as Unknown.
// Nodes are built once by internal/sirbuild
// and traversed read-only thereafter by backend emitters.
package sir

import (
	"fmt"
	"strings"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/types"
)

// Base carries the fields common to every SIR node: a stable id assigned
// during building, and the source span it was lowered from (kept for
// diagnostics that survive past inference). Builders outside this package
// construct one with NewBase and embed it.
type Base struct {
	NodeID uint64
	Span   ast.Pos
}

// NewBase builds the node bookkeeping a builder embeds into every node.
func NewBase(id uint64, pos ast.Pos) Base { return Base{NodeID: id, Span: pos} }

func (n Base) ID() uint64   { return n.NodeID }
func (n Base) Pos() ast.Pos { return n.Span }

// Expr is any SIR expression node. Every Expr carries its own decided type.
type Expr interface {
	ID() uint64
	Pos() ast.Pos
	TypeOf() *types.TypeTerm
	String() string
	sirExpr()
}

// Stmt is any SIR statement node.
type Stmt interface {
	ID() uint64
	Pos() ast.Pos
	String() string
	sirStmt()
}

// ExprBase is the embeddable base for every Expr node, pairing a Base with
// the node's decided TypeTerm.
type ExprBase struct {
	Base
	Type *types.TypeTerm
}

// NewExprBase builds the embeddable base for an expression node.
func NewExprBase(id uint64, pos ast.Pos, t *types.TypeTerm) ExprBase {
	return ExprBase{Base: NewBase(id, pos), Type: t}
}

func (e ExprBase) TypeOf() *types.TypeTerm { return e.Type }
func (ExprBase) sirExpr()                  {}

// StmtBase is the embeddable base for every Stmt node.
type StmtBase struct {
	Base
}

// NewStmtBase builds the embeddable base for a statement node.
func NewStmtBase(id uint64, pos ast.Pos) StmtBase { return StmtBase{Base: NewBase(id, pos)} }

func (StmtBase) sirStmt() {}

// Const is a literal value with a decided type.
type Const struct {
	ExprBase
	Kind  ast.LiteralKind
	Value interface{}
}

func (c *Const) String() string { return fmt.Sprintf("%v", c.Value) }

// Var is a reference to a local, parameter, or module-level name.
type Var struct {
	ExprBase
	Name string
}

func (v *Var) String() string { return v.Name }

// BinOp is a binary arithmetic, comparison-excluded operation between two
// operands whose element types have already been joined.
type BinOp struct {
	ExprBase
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinOp) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// UnaryOp is a unary operation (negation, boolean not).
type UnaryOp struct {
	ExprBase
	Op      string
	Operand Expr
}

func (u *UnaryOp) String() string { return fmt.Sprintf("%s%s", u.Op, u.Operand) }

// Compare decomposes a chained comparison into its operand list and the
// pairwise operators joining them; always typed Bool.
type Compare struct {
	ExprBase
	Operands []Expr
	Ops      []string
}

func (c *Compare) String() string {
	var b strings.Builder
	for i, o := range c.Operands {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", c.Ops[i-1])
		}
		fmt.Fprint(&b, o)
	}
	return b.String()
}

// Call is a direct function call (not a method call on a receiver).
type Call struct {
	ExprBase
	Func string
	Args []Expr
}

func (c *Call) String() string { return fmt.Sprintf("%s(%v)", c.Func, c.Args) }

// MethodCall is a call on a receiver expression, canonicalized out of
// attribute-call surface syntax during building. Built-in container
// operations (append, get, ...) are also lowered to MethodCall with Op set.
type MethodCall struct {
	ExprBase
	Receiver Expr
	Method   string
	Args     []Expr
	Op       *ContainerOp // non-nil when Method names a built-in container op
}

func (m *MethodCall) String() string {
	return fmt.Sprintf("%s.%s(%v)", m.Receiver, m.Method, m.Args)
}

// Index is a single-element container/sequence read.
type Index struct {
	ExprBase
	Value Expr
	Key   Expr
}

func (i *Index) String() string { return fmt.Sprintf("%s[%s]", i.Value, i.Key) }

// SliceIndex is a start:stop:step slice over a sequence.
type SliceIndex struct {
	ExprBase
	Value       Expr
	Start, Stop, Step Expr
}

func (s *SliceIndex) String() string { return fmt.Sprintf("%s[%s:%s:%s]", s.Value, s.Start, s.Stop, s.Step) }

// Attr is a field read on a ClassRecord instance.
type Attr struct {
	ExprBase
	Value Expr
	Name  string
}

func (a *Attr) String() string { return fmt.Sprintf("%s.%s", a.Value, a.Name) }

// ContainerLit constructs a List/Dict/Set/Tuple literal of a single decided
// element type (or key/value pair for Dict).
type ContainerLit struct {
	ExprBase
	Kind     types.Kind
	Elements []Expr
	Keys     []Expr // parallel to Elements, only populated for Dict
}

func (c *ContainerLit) String() string { return fmt.Sprintf("%s{%v}", c.Type.Kind, c.Elements) }

// Comprehension is a list/set/dict comprehension lowered to an explicit
// generator/filter/body shape; emitters may realize it natively or via a
// runtime helper per target preference.
type Comprehension struct {
	ExprBase
	Generators []CompGenerator
	Conds      []Expr
	Key        Expr // Dict only
	Elem       Expr
}

// CompGenerator is one `for Var in Iter` clause of a Comprehension.
type CompGenerator struct {
	Var      string
	VarType  *types.TypeTerm
	Iter     Expr
}

func (c *Comprehension) String() string {
	return fmt.Sprintf("[%s for %v]", c.Elem, c.Generators)
}

// Assign binds Value to Target, which is a Var (plain local), an Index
// (container element write), or an Attr (field write) — mirroring the
// surface assignment targets the parser accepts.
type Assign struct {
	StmtBase
	Target Expr
	Value  Expr
}

func (a *Assign) String() string { return fmt.Sprintf("%s = %s", a.Target, a.Value) }

// If is a conditional with an always-present (possibly empty) else branch.
type If struct {
	StmtBase
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *If) String() string { return fmt.Sprintf("if %s {...} else {...}", i.Cond) }

// While is a condition-tested loop.
type While struct {
	StmtBase
	Cond Expr
	Body []Stmt
}

func (w *While) String() string { return fmt.Sprintf("while %s {...}", w.Cond) }

// For iterates either a decided integer range or an iterable of known
// element type; RangeArgs is non-nil exactly when Iter is nil.
type For struct {
	StmtBase
	Var       string
	VarType   *types.TypeTerm
	RangeArgs []Expr
	Iter      Expr
	Body      []Stmt
}

func (f *For) String() string { return fmt.Sprintf("for %s {...}", f.Var) }

// Return yields an optional value from the enclosing FunctionDef.
type Return struct {
	StmtBase
	Value Expr // nil for bare `return`
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

// ExprStmt is an expression evaluated for effect (a bare call).
type ExprStmt struct {
	StmtBase
	X Expr
}

func (e *ExprStmt) String() string { return e.X.String() }

// Param is one decided function parameter.
type Param struct {
	Name string
	Type *types.TypeTerm
}

// FunctionDef is a fully typed function or method.
type FunctionDef struct {
	Base
	Name       string
	Params     []Param
	Return     *types.TypeTerm
	Body       []Stmt
	IsMethod   bool
	Receiver   string // receiver name when IsMethod
}

func (f *FunctionDef) String() string { return fmt.Sprintf("def %s(...) -> %s", f.Name, f.Return) }

// ClassDef carries both the declared record shape (ClassRecord) and the
// lowered method bodies.
type ClassDef struct {
	Base
	Record  ClassRecord
	Methods []*FunctionDef
}

func (c *ClassDef) String() string { return fmt.Sprintf("class %s", c.Record.Name) }

// ClassRecord is the structural shape of a class: name, ordered fields,
// constructor parameters, and the methods operating on it. There is no open
// inheritance: a class has at most one base, recorded by name, and multiple
// inheritance/mixins are rejected during parsing, never here.
type ClassRecord struct {
	Name       string
	Base       string // "" when there is no base class
	Fields     []Param
	CtorParams []Param
}

// Module is the top-level SIR unit: every node it owns is immutable once
// building completes, and all of them are destroyed together with it.
type Module struct {
	Name    string
	Funcs   []*FunctionDef
	Classes []*ClassDef
}

// ContainerOpKind names one of the abstract container operations a backend's
// runtime ABI must provide a mapping for.
type ContainerOpKind int

const (
	OpLen ContainerOpKind = iota
	OpAppend
	OpGet
	OpSet
	OpContains
	OpIter
	OpMap
	OpFilter
	OpComprehension
)

func (k ContainerOpKind) String() string {
	switch k {
	case OpLen:
		return "len"
	case OpAppend:
		return "append"
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpContains:
		return "contains"
	case OpIter:
		return "iter"
	case OpMap:
		return "map"
	case OpFilter:
		return "filter"
	case OpComprehension:
		return "comprehension"
	default:
		return "op?"
	}
}

// ContainerOp is an abstract operation on a container, carrying the element
// type(s) needed to pick a concrete target realization. ComprehensionKind
// and the rest only apply when Kind == OpComprehension.
type ContainerOp struct {
	Kind          ContainerOpKind
	Container     types.Kind
	ElemTypes     []*types.TypeTerm
	ComprehensionKind types.Kind
}
