// Package parser turns a token stream from internal/lexer into the AST
// defined in internal/ast, using a Pratt expression parser layered over a
// recursive-descent statement parser driven by the lexer's synthesized
// INDENT/DEDENT/NEWLINE tokens.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/lexer"
)

// ParseError is a structured parser error, reported as an errors.Report by
// the caller once parsing finishes.
type ParseError struct {
	Code    string
	Message string
	Pos     ast.Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Pos, e.Message)
}

// Report converts a ParseError into the canonical diagnostic Report.
func (e *ParseError) Report() *errors.Report {
	return &errors.Report{
		Schema:  "mgenc.error/v1",
		Code:    e.Code,
		Phase:   "parse",
		Message: e.Message,
		Span:    &ast.Span{Start: e.Pos, End: e.Pos},
	}
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser parses one source file into a *ast.Module.
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []*ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NONE, p.parseNoneLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrTuple)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteralOrComprehension)
	p.registerPrefix(lexer.LBRACE, p.parseDictOrSetLiteralOrComprehension)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.NOT, p.parsePrefixExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.SLASHSLASH, lexer.PERCENT, lexer.POWER,
		lexer.AND, lexer.OR,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	for _, tt := range []lexer.TokenType{lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE} {
		p.registerInfix(tt, p.parseCompareExpression)
	}
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseAttrExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every ParseError accumulated during parsing.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(errors.SYN001, "expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) errorf(code, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     p.curPos(),
	})
}

func (p *Parser) curPos() ast.Pos {
	return ast.Pos{File: p.curToken.File, Line: p.curToken.Line, Column: p.curToken.Column}
}

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }

// skipNewlines consumes any run of blank-line NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.nextToken()
	}
}

// skipModuleSeparators consumes NEWLINE and DEDENT tokens between top-level
// definitions: a def/class body always ends on the DEDENT that closes it,
// which carries no meaning once its block has already been parsed.
func (p *Parser) skipModuleSeparators() {
	for p.curIs(lexer.NEWLINE) || p.curIs(lexer.DEDENT) {
		p.nextToken()
	}
}

// ParseModule parses the entire token stream as a module.
func (p *Parser) ParseModule(path string) *ast.Module {
	mod := &ast.Module{Path: path, Pos: p.curPos()}
	p.skipModuleSeparators()
	for !p.curIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.IMPORT, lexer.FROM:
			mod.Imports = append(mod.Imports, p.parseImport())
		case lexer.DEF:
			mod.Funcs = append(mod.Funcs, p.parseFuncDef())
		case lexer.CLASS:
			mod.Classes = append(mod.Classes, p.parseClassDef())
		default:
			p.errorf(errors.UNS001, "only imports, function and class definitions are allowed at module scope, found %s", p.curToken.Type)
		}
		p.nextToken()
		p.skipModuleSeparators()
	}
	return mod
}

func (p *Parser) parseImport() *ast.ImportDecl {
	pos := p.curPos()
	decl := &ast.ImportDecl{Pos: pos}
	if p.curIs(lexer.FROM) {
		if !p.expect(lexer.IDENT) {
			return decl
		}
		decl.Module = p.curToken.Literal
		if !p.expect(lexer.IMPORT) {
			return decl
		}
		for {
			if !p.expect(lexer.IDENT) {
				break
			}
			decl.Symbols = append(decl.Symbols, p.curToken.Literal)
			if p.peekIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	} else {
		if !p.expect(lexer.IDENT) {
			return decl
		}
		decl.Module = p.curToken.Literal
	}
	if p.peekIs(lexer.NEWLINE) {
		p.nextToken()
	}
	return decl
}

func (p *Parser) parseFuncDef() *ast.FuncDef {
	pos := p.curPos()
	f := &ast.FuncDef{Pos: pos}
	if !p.expect(lexer.IDENT) {
		return f
	}
	f.Name = p.curToken.Literal
	if !p.expect(lexer.LPAREN) {
		return f
	}
	f.Params = p.parseParamList()
	if !p.expect(lexer.RPAREN) {
		return f
	}
	if p.peekIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()
		f.ReturnType = p.parseTypeExpr()
	} else if !strings.HasPrefix(f.Name, "_") {
		p.errorf(errors.ANN001, "public function %q has no return annotation", f.Name)
	}
	if !p.expect(lexer.COLON) {
		return f
	}
	f.Body = p.parseBlock()
	return f
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	if p.peekIs(lexer.RPAREN) {
		return params
	}
	for {
		if !p.expect(lexer.IDENT) {
			return params
		}
		param := &ast.Param{Name: p.curToken.Literal, Pos: p.curPos()}
		if p.peekIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			param.Annotation = p.parseTypeExpr()
		}
		// An unannotated non-"self" parameter is deferred to Stage B's
		// flow-sensitive inference rather than rejected here; infer.go
		// raises ANN001 itself if Stage B can't recover a concrete type.
		params = append(params, param)
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	pos := p.curPos()
	if !p.curIs(lexer.IDENT) {
		p.errorf(errors.SYN007, "expected type name, got %s", p.curToken.Type)
		return &ast.NamedTypeExpr{Name: "Unknown", Pos: pos}
	}
	t := &ast.NamedTypeExpr{Name: p.curToken.Literal, Pos: pos}
	if p.peekIs(lexer.LBRACKET) {
		p.nextToken()
		for {
			p.nextToken()
			t.Args = append(t.Args, p.parseTypeExpr())
			if p.peekIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		p.expect(lexer.RBRACKET)
	}
	return t
}

func (p *Parser) parseClassDef() *ast.ClassDef {
	pos := p.curPos()
	c := &ast.ClassDef{Pos: pos}
	if !p.expect(lexer.IDENT) {
		return c
	}
	c.Name = p.curToken.Literal
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return c
		}
		c.Base = p.curToken.Literal
		if p.peekIs(lexer.COMMA) {
			p.errorf(errors.UNS002, "multiple inheritance is not supported")
			for p.peekIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
			}
		}
		p.expect(lexer.RPAREN)
	}
	if !p.expect(lexer.COLON) {
		return c
	}
	if !p.expect(lexer.NEWLINE) {
		return c
	}
	if !p.expect(lexer.INDENT) {
		return c
	}
	p.nextToken()
	for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.NEWLINE) {
			p.nextToken()
			continue
		}
		if p.curIs(lexer.DEF) {
			c.Methods = append(c.Methods, p.parseMethodDef())
			p.nextToken()
			continue
		}
		if p.curIs(lexer.PASS) {
			p.nextToken()
			continue
		}
		p.errorf(errors.SYN004, "expected method definition in class body, got %s", p.curToken.Type)
		p.nextToken()
	}
	return c
}

func (p *Parser) parseMethodDef() *ast.FuncDef {
	f := p.parseFuncDef()
	f.IsMethod = true
	if len(f.Params) > 0 && f.Params[0].Name == "self" {
		f.Receiver = "self"
	}
	return f
}

// parseBlock expects the current token to be COLON already consumed by the
// caller's expect; it then consumes NEWLINE INDENT stmt* DEDENT.
func (p *Parser) parseBlock() []ast.Stmt {
	if !p.expect(lexer.NEWLINE) {
		return nil
	}
	if !p.expect(lexer.INDENT) {
		return nil
	}
	p.nextToken()
	var stmts []ast.Stmt
	for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.NEWLINE) {
			p.nextToken()
			continue
		}
		stmts = append(stmts, p.parseStatement())
		p.nextToken()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.PASS:
		return &ast.Pass{Pos: p.curPos()}
	case lexer.DEF:
		p.errorf(errors.UNS001, "nested function definitions are not supported")
		p.skipStatementBlock()
		return &ast.Pass{Pos: p.curPos()}
	default:
		return p.parseSimpleStatement()
	}
}

// skipStatementBlock consumes tokens through the matching DEDENT of a block
// the parser has decided to reject, so the remaining stream stays aligned.
func (p *Parser) skipStatementBlock() {
	for !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) {
		p.nextToken()
	}
	if p.peekIs(lexer.INDENT) {
		p.nextToken()
		p.nextToken()
		depth := 1
		for depth > 0 && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.INDENT) {
				depth++
			} else if p.curIs(lexer.DEDENT) {
				depth--
			}
			if depth > 0 {
				p.nextToken()
			}
		}
	}
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.curPos()
	if p.peekIs(lexer.NEWLINE) {
		return &ast.Return{Pos: pos}
	}
	p.nextToken()
	return &ast.Return{Value: p.parseExpression(precLowest), Pos: pos}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.curPos()
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.COLON) {
		return &ast.If{Cond: cond, Pos: pos}
	}
	then := p.parseBlock()
	node := &ast.If{Cond: cond, Then: then, Pos: pos}
	if p.peekIs(lexer.ELIF) {
		p.nextToken()
		node.Else = []ast.Stmt{p.parseIf()}
	} else if p.peekIs(lexer.ELSE) {
		p.nextToken()
		if !p.expect(lexer.COLON) {
			return node
		}
		node.Else = p.parseBlock()
	}
	return node
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.curPos()
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.COLON) {
		return &ast.While{Cond: cond, Pos: pos}
	}
	return &ast.While{Cond: cond, Body: p.parseBlock(), Pos: pos}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.curPos()
	if !p.expect(lexer.IDENT) {
		return &ast.For{Pos: pos}
	}
	name := p.curToken.Literal
	if !p.expect(lexer.IN) {
		return &ast.For{Var: name, Pos: pos}
	}
	p.nextToken()
	iter := p.parseExpression(precLowest)
	node := &ast.For{Var: name, Iter: iter, Pos: pos}
	if call, ok := iter.(*ast.Call); ok {
		if id, ok := call.Func.(*ast.Identifier); ok && id.Name == "range" {
			node.RangeArgs = call.Args
		}
	}
	if !p.expect(lexer.COLON) {
		return node
	}
	node.Body = p.parseBlock()
	return node
}

func (p *Parser) parseSimpleStatement() ast.Stmt {
	pos := p.curPos()
	expr := p.parseExpression(precLowest)

	if p.peekIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(precLowest)
		return &ast.Assign{Target: expr, Value: value, Pos: pos}
	}

	if op, ok := augAssignOp(p.peekToken.Type); ok {
		if !isPureLvalue(expr) {
			p.errorf(errors.UNS003, "augmented assignment target must be a plain variable, index, or attribute")
		}
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(precLowest)
		return &ast.AugAssign{Target: expr, Op: op, Value: value, Pos: pos}
	}

	return &ast.ExprStmt{X: expr, Pos: pos}
}

func augAssignOp(t lexer.TokenType) (string, bool) {
	switch t {
	case lexer.PLUSEQ:
		return "+", true
	case lexer.MINUSEQ:
		return "-", true
	case lexer.STAREQ:
		return "*", true
	case lexer.SLASHEQ:
		return "/", true
	case lexer.PERCENTEQ:
		return "%", true
	default:
		return "", false
	}
}

func isPureLvalue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.Index, *ast.Attr:
		return true
	default:
		return false
	}
}

// Precedence levels, independent of lexer.Token.Precedence (which only
// covers binary/infix operators); this scale additionally anchors the
// Pratt loop's starting point.
const precLowest = 0

func (p *Parser) peekPrecedence() int { return p.peekToken.Precedence() }
func (p *Parser) curPrecedence() int  { return p.curToken.Precedence() }

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(errors.SYN001, "unexpected token %s in expression", p.curToken.Type)
		return &ast.Literal{Kind: ast.NoneLit, Pos: p.curPos()}
	}
	left := prefix()

	for !p.peekIs(lexer.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Identifier{Name: p.curToken.Literal, Pos: p.curPos()}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	pos := p.curPos()
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(errors.SYN001, "invalid integer literal %q", p.curToken.Literal)
	}
	return &ast.Literal{Kind: ast.IntLit, Value: v, Pos: pos}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	pos := p.curPos()
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(errors.SYN001, "invalid float literal %q", p.curToken.Literal)
	}
	return &ast.Literal{Kind: ast.FloatLit, Value: v, Pos: pos}
}

// parseStringLiteral also performs adjacent string-literal concatenation
// folding, per the normalizer's rule.
func (p *Parser) parseStringLiteral() ast.Expr {
	pos := p.curPos()
	var b strings.Builder
	b.WriteString(p.curToken.Literal)
	for p.peekIs(lexer.STRING) {
		p.nextToken()
		b.WriteString(p.curToken.Literal)
	}
	return &ast.Literal{Kind: ast.StringLit, Value: b.String(), Pos: pos}
}

func (p *Parser) parseBooleanLiteral() ast.Expr {
	return &ast.Literal{Kind: ast.BoolLit, Value: p.curToken.Type == lexer.TRUE, Pos: p.curPos()}
}

func (p *Parser) parseNoneLiteral() ast.Expr {
	return &ast.Literal{Kind: ast.NoneLit, Value: nil, Pos: p.curPos()}
}

func (p *Parser) parsePrefixExpression() ast.Expr {
	pos := p.curPos()
	op := p.curToken.Literal
	p.nextToken()
	return &ast.UnaryOp{Op: op, Operand: p.parseExpression(precPrefix), Pos: pos}
}

// precPrefix exceeds every binary operator's Precedence() (max 6, see
// lexer/token.go) so unary binds tighter than any infix operator.
const precPrefix = 7

func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	pos := p.curPos()
	op := p.curToken.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryOp{Left: left, Op: op, Right: right, Pos: pos}
}

// parseCompareExpression builds a chained Compare node: "a < b < c" parses
// as one Compare{[a,b,c], [<,<]} rather than nested BinaryOps, per the
// chained-comparison normalization.
func (p *Parser) parseCompareExpression(left ast.Expr) ast.Expr {
	pos := p.curPos()
	operands := []ast.Expr{left}
	var ops []string
	for {
		op := p.curToken.Literal
		precedence := p.curPrecedence()
		p.nextToken()
		operands = append(operands, p.parseExpression(precedence))
		ops = append(ops, op)
		if !isCompareOp(p.peekToken.Type) {
			break
		}
		p.nextToken()
	}
	return &ast.Compare{Operands: operands, Ops: ops, Pos: pos}
}

func isCompareOp(t lexer.TokenType) bool {
	switch t {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCallExpression(fn ast.Expr) ast.Expr {
	pos := p.curPos()
	args := p.parseExprList(lexer.RPAREN)
	return &ast.Call{Func: fn, Args: args, Pos: pos}
}

func (p *Parser) parseExprList(end lexer.TokenType) []ast.Expr {
	var list []ast.Expr
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(precLowest))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(precLowest))
	}
	if !p.expect(end) {
		return list
	}
	return list
}

func (p *Parser) parseAttrExpression(left ast.Expr) ast.Expr {
	pos := p.curPos()
	if !p.expect(lexer.IDENT) {
		return left
	}
	return &ast.Attr{Value: left, Name: p.curToken.Literal, Pos: pos}
}

func (p *Parser) parseIndexExpression(left ast.Expr) ast.Expr {
	pos := p.curPos()
	var low, high, step ast.Expr
	isSlice := false

	if !p.peekIs(lexer.COLON) {
		p.nextToken()
		low = p.parseExpression(precLowest)
	}
	if p.peekIs(lexer.COLON) {
		isSlice = true
		p.nextToken()
		if !p.peekIs(lexer.COLON) && !p.peekIs(lexer.RBRACKET) {
			p.nextToken()
			high = p.parseExpression(precLowest)
		}
		if p.peekIs(lexer.COLON) {
			p.nextToken()
			if !p.peekIs(lexer.RBRACKET) {
				p.nextToken()
				step = p.parseExpression(precLowest)
			}
		}
	}
	p.expect(lexer.RBRACKET)

	if isSlice {
		return &ast.SliceIndex{Value: left, Low: low, High: high, Step: step, Pos: pos}
	}
	return &ast.Index{Value: left, Index: low, Pos: pos}
}

func (p *Parser) parseGroupedOrTuple() ast.Expr {
	pos := p.curPos()
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return &ast.ContainerLit{Kind: ast.TupleContainer, Pos: pos}
	}
	p.nextToken()
	first := p.parseExpression(precLowest)
	if !p.peekIs(lexer.COMMA) {
		p.expect(lexer.RPAREN)
		return first
	}
	elems := []ast.Expr{first}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		if p.peekIs(lexer.RPAREN) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseExpression(precLowest))
	}
	p.expect(lexer.RPAREN)
	return &ast.ContainerLit{Kind: ast.TupleContainer, Elements: elems, Pos: pos}
}

func (p *Parser) parseListLiteralOrComprehension() ast.Expr {
	pos := p.curPos()
	if p.peekIs(lexer.RBRACKET) {
		p.nextToken()
		return &ast.ContainerLit{Kind: ast.ListContainer, Pos: pos}
	}
	p.nextToken()
	first := p.parseExpression(precLowest)
	if p.peekIs(lexer.FOR) {
		return p.parseComprehensionTail(ast.ListContainer, nil, first, pos, lexer.RBRACKET)
	}
	elems := []ast.Expr{first}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		if p.peekIs(lexer.RBRACKET) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseExpression(precLowest))
	}
	p.expect(lexer.RBRACKET)
	return &ast.ContainerLit{Kind: ast.ListContainer, Elements: elems, Pos: pos}
}

func (p *Parser) parseDictOrSetLiteralOrComprehension() ast.Expr {
	pos := p.curPos()
	if p.peekIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ContainerLit{Kind: ast.DictContainer, Pos: pos}
	}
	p.nextToken()
	firstKeyOrElem := p.parseExpression(precLowest)

	if p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		firstVal := p.parseExpression(precLowest)
		if p.peekIs(lexer.FOR) {
			return p.parseComprehensionTail(ast.DictContainer, firstKeyOrElem, firstVal, pos, lexer.RBRACE)
		}
		keys := []ast.Expr{firstKeyOrElem}
		vals := []ast.Expr{firstVal}
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			if p.peekIs(lexer.RBRACE) {
				break
			}
			p.nextToken()
			k := p.parseExpression(precLowest)
			p.expect(lexer.COLON)
			p.nextToken()
			v := p.parseExpression(precLowest)
			keys = append(keys, k)
			vals = append(vals, v)
		}
		p.expect(lexer.RBRACE)
		return &ast.ContainerLit{Kind: ast.DictContainer, Keys: keys, Elements: vals, Pos: pos}
	}

	if p.peekIs(lexer.FOR) {
		return p.parseComprehensionTail(ast.SetContainer, nil, firstKeyOrElem, pos, lexer.RBRACE)
	}
	elems := []ast.Expr{firstKeyOrElem}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		if p.peekIs(lexer.RBRACE) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseExpression(precLowest))
	}
	p.expect(lexer.RBRACE)
	return &ast.ContainerLit{Kind: ast.SetContainer, Elements: elems, Pos: pos}
}

// parseComprehensionTail parses "for var in iter [if cond]..." after the
// element (and, for dict comprehensions, key) expression has already been
// parsed, closing on end.
func (p *Parser) parseComprehensionTail(kind ast.ContainerKind, key, elem ast.Expr, pos ast.Pos, end lexer.TokenType) ast.Expr {
	comp := &ast.Comprehension{Kind: kind, Elem: elem, Key: key, Pos: pos}
	for p.peekIs(lexer.FOR) {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			break
		}
		varName := p.curToken.Literal
		if !p.expect(lexer.IN) {
			break
		}
		p.nextToken()
		iter := p.parseExpression(precLowest)
		comp.Generators = append(comp.Generators, ast.Generator{Var: varName, Iter: iter})
		for p.peekIs(lexer.IF) {
			p.nextToken()
			p.nextToken()
			comp.Conds = append(comp.Conds, p.parseExpression(precLowest))
		}
	}
	p.expect(end)
	return comp
}
