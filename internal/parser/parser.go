package parser

import (
	"fmt"
	"swiftsub/internal/ast"
	"swiftsub/internal/lexer"
)

// ---------------------------------------------------------------------------
// Binding power, lowest first
// ---------------------------------------------------------------------------

const (
	precNone       = iota
	precOr         // ||
	precAnd        // &&
	precCoalesce   // ?? (right-associative)
	precComparison // == != < > <= >=
	precAdditive   // + -
	precMultiply   // * /
	precPrefix     // !x
	precPostfix    // x!
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError is one syntax error with the location of the offending token.
type ParseError struct {
	Message string
	Line    int
	Column  int
	// Incomplete is set when the error was raised at end of input, i.e. more
	// source could still make the program valid.
	Incomplete bool
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser walks a token slice once, collecting errors as it goes.
type Parser struct {
	tokens    []lexer.Token
	pos       int
	errors    []ParseError
	funcDepth int // > 0 while inside a function body
}

// Parse builds a Program from the output of lexer.Lex. The program is
// returned even when errors were found.
func Parse(tokens []lexer.Token) (*ast.Program, []ParseError) {
	p := &Parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	return prog, p.errors
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= 0 && idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return lexer.Token{Type: lexer.EOF}
}

// advance never moves past EOF.
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) previous() lexer.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

func (p *Parser) match(types ...string) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of type typ. On mismatch it records msg and leaves
// the position unchanged.
func (p *Parser) expect(typ string, msg string) lexer.Token {
	if p.check(typ) {
		return p.advance()
	}
	tok := p.peek()
	p.addError(tok, fmt.Sprintf("%s (got %s %q)", msg, tok.Type, tok.Value))
	return tok
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, ParseError{
		Message:    msg,
		Line:       tok.Line,
		Column:     tok.Column,
		Incomplete: tok.Type == lexer.EOF,
	})
}

// synchronize skips to the next line break, ';' or statement keyword.
func (p *Parser) synchronize() {
	p.advance()
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON || p.peek().Newline {
			return
		}
		switch p.peek().Type {
		case lexer.FUNC, lexer.VAR, lexer.LET, lexer.IF, lexer.WHILE,
			lexer.RETURN, lexer.RBRACE:
			return
		}
		p.advance()
	}
}

func (p *Parser) position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

func isTypeKeyword(typ string) bool {
	switch typ {
	case lexer.INTTYPE, lexer.DOUBLETYPE, lexer.STRINGTYPE:
		return true
	}
	return false
}

// endStatement enforces that statements are separated by a line break or a
// semicolon. A closing brace or end of input also ends a statement.
func (p *Parser) endStatement() {
	if p.match(lexer.SEMICOLON) {
		for p.match(lexer.SEMICOLON) {
		}
		return
	}
	tok := p.peek()
	if tok.Type == lexer.RBRACE || tok.Type == lexer.EOF || tok.Newline {
		return
	}
	p.addError(tok, fmt.Sprintf("expected newline or ';' after statement (got %s %q)", tok.Type, tok.Value))
	p.synchronize()
}

// =========================================================================
// Top-level parsing
// =========================================================================

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Pos: p.position(p.peek())}

	for !p.check(lexer.EOF) {
		startPos := p.pos
		if p.check(lexer.FUNC) {
			if fn := p.parseFuncDecl(); fn != nil {
				prog.Functions = append(prog.Functions, fn)
			}
		} else if p.match(lexer.SEMICOLON) {
			continue
		} else if stmt := p.parseStatement(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		// Safety: if no tokens were consumed, skip one to avoid an infinite loop.
		if p.pos == startPos {
			p.advance()
		}
	}

	return prog
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.advance() // consume FUNC
	name := p.expect(lexer.IDENT, "expected function name")
	p.expect(lexer.LPAREN, "expected '(' after function name")

	params := p.parseParamList()

	p.expect(lexer.RPAREN, "expected ')' after parameters")

	var retType *ast.TypeExpr
	if p.match(lexer.ARROW) {
		retType = p.parseType()
	}

	p.funcDepth++
	body := p.parseBlock()
	p.funcDepth--

	return &ast.FuncDecl{
		Name:       name.Value,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Pos:        p.position(tok),
	}
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param

	if p.check(lexer.RPAREN) {
		return params
	}

	params = append(params, p.parseParam())
	for p.match(lexer.COMMA) {
		params = append(params, p.parseParam())
	}
	return params
}

// parseParam parses "<label> <name>: <type>". A parameter written with a
// single name uses that name as its label.
func (p *Parser) parseParam() *ast.Param {
	first := p.peek()
	if first.Type != lexer.IDENT && first.Type != lexer.UNDERSCORE {
		p.addError(first, fmt.Sprintf("expected parameter label or name (got %s %q)", first.Type, first.Value))
		return &ast.Param{Label: "<error>", Name: "<error>", Type: &ast.TypeExpr{Name: "<error>"}, Pos: p.position(first)}
	}
	p.advance()

	label, name := first.Value, first
	if !p.check(lexer.COLON) || first.Type == lexer.UNDERSCORE {
		name = p.expect(lexer.IDENT, "expected parameter name")
	}
	p.expect(lexer.COLON, "expected ':' after parameter name")
	typ := p.parseType()

	return &ast.Param{
		Label: label,
		Name:  name.Value,
		Type:  typ,
		Pos:   p.position(first),
	}
}

// parseType parses a type annotation: Int, Double, String, optionally
// followed by '?'.
func (p *Parser) parseType() *ast.TypeExpr {
	tok := p.peek()

	if !isTypeKeyword(tok.Type) {
		p.addError(tok, fmt.Sprintf("expected type name, got %s", tok.Type))
		return &ast.TypeExpr{Name: "<error>", Pos: p.position(tok)}
	}
	p.advance()
	te := &ast.TypeExpr{Name: tok.Value, Pos: p.position(tok)}
	if p.check(lexer.QUESTION) && !p.peek().Newline {
		p.advance()
		te.Optional = true
	}
	return te
}

// =========================================================================
// Statements
// =========================================================================

func (p *Parser) parseBlock() *ast.BlockStmt {
	tok := p.expect(lexer.LBRACE, "expected '{'")
	block := &ast.BlockStmt{Pos: p.position(tok)}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		if p.match(lexer.SEMICOLON) {
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		// Safety: if no tokens were consumed, skip one to avoid an infinite loop.
		if p.pos == startPos {
			p.advance()
		}
	}

	p.expect(lexer.RBRACE, "expected '}'")
	return block
}

// parseStatement parses one statement including its terminator.
func (p *Parser) parseStatement() ast.Stmt {
	var stmt ast.Stmt
	switch p.peek().Type {
	case lexer.VAR, lexer.LET:
		stmt = p.parseVarDecl()
	case lexer.RETURN:
		stmt = p.parseReturnStmt()
	case lexer.IF:
		// Block statements carry their own terminator.
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FUNC:
		tok := p.peek()
		p.addError(tok, "function declarations are only allowed at top level")
		p.parseFuncDecl()
		return nil
	default:
		stmt = p.parseExprOrAssignStmt()
	}
	p.endStatement()
	return stmt
}

// ---- Var / Let ----

func (p *Parser) parseVarDecl() *ast.VarDecl {
	tok := p.advance() // consume VAR or LET
	name := p.expect(lexer.IDENT, "expected variable name")

	decl := &ast.VarDecl{
		Name:    name.Value,
		Mutable: tok.Type == lexer.VAR,
		Pos:     p.position(tok),
	}
	if p.match(lexer.COLON) {
		decl.Type = p.parseType()
	}
	if p.match(lexer.ASSIGN) {
		decl.Value = p.parseExpression()
	}
	return decl
}

// ---- Return ----

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.advance() // consume RETURN
	if p.funcDepth == 0 {
		p.addError(tok, "return statement outside of function")
	}
	var value ast.Expr
	next := p.peek()
	if !next.Newline && next.Type != lexer.SEMICOLON && next.Type != lexer.RBRACE && next.Type != lexer.EOF {
		value = p.parseExpression()
	}
	return &ast.ReturnStmt{Value: value, Pos: p.position(tok)}
}

// ---- If ----

func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.advance() // consume IF
	stmt := &ast.IfStmt{Pos: p.position(tok)}

	if p.match(lexer.LET) {
		name := p.expect(lexer.IDENT, "expected identifier after 'if let'")
		stmt.LetName = &ast.IdentExpr{Name: name.Value, Pos: p.position(name)}
	} else {
		stmt.Condition = p.parseExpression()
	}
	stmt.Then = p.parseBlock()

	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

// ---- While ----

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.advance() // consume WHILE
	cond := p.parseExpression()
	body := p.parseBlock()
	return &ast.WhileStmt{Condition: cond, Body: body, Pos: p.position(tok)}
}

// ---- Assignment / expression ----

// parseExprOrAssignStmt parses either "<ident> = <expr>" or a bare
// expression statement.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	if p.check(lexer.IDENT) && p.peekAt(1).Type == lexer.ASSIGN {
		name := p.advance()
		p.advance() // consume =
		value := p.parseExpression()
		return &ast.AssignStmt{
			Target: &ast.IdentExpr{Name: name.Value, Pos: p.position(name)},
			Value:  value,
			Pos:    p.position(name),
		}
	}

	expr := p.parseExpression()
	if p.check(lexer.ASSIGN) {
		p.addError(p.peek(), "invalid assignment target")
		p.advance()
		p.parseExpression()
	}
	return &ast.ExprStmt{Expression: expr, Pos: expr.GetPos()}
}

// =========================================================================
// Expressions
// =========================================================================

func (p *Parser) parseExpression() ast.Expr {
	return p.parsePrecedence(precOr)
}

// parsePrecedence keeps folding infix operators while they bind at least as
// tightly as minPrec.
func (p *Parser) parsePrecedence(minPrec int) ast.Expr {
	left := p.parsePrefix()

	for {
		prec := infixPrecedence(p.peek())
		if prec == precNone || prec < minPrec {
			break
		}
		left = p.parseInfix(left, prec)
	}

	return left
}

// ---- Atoms and prefix ! ----

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.peek()

	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		if p.check(lexer.LPAREN) && !p.peek().Newline {
			return p.parseCallExpr(tok)
		}
		return &ast.IdentExpr{Name: tok.Value, Pos: p.position(tok)}

	case lexer.INT:
		p.advance()
		return &ast.IntLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.FLOAT:
		p.advance()
		return &ast.FloatLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.STRING:
		p.advance()
		return &ast.StringLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.NIL:
		p.advance()
		return &ast.NilLitExpr{Pos: p.position(tok)}

	case lexer.LPAREN:
		return p.parseGroupExpr()

	case lexer.BANG:
		p.advance()
		operand := p.parsePrecedence(precPrefix)
		return &ast.UnaryExpr{Op: tok.Value, Operand: operand, Pos: p.position(tok)}

	default:
		p.addError(tok, fmt.Sprintf("unexpected token %s in expression", tok.Type))
		if tok.Type != lexer.EOF && tok.Type != lexer.RBRACE && !tok.Newline {
			p.advance() // consume the bad token so we make progress
		}
		return &ast.IdentExpr{Name: "<error>", Pos: p.position(tok)}
	}
}

func (p *Parser) parseGroupExpr() ast.Expr {
	tok := p.advance() // consume (
	expr := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after expression")
	return &ast.GroupExpr{Expression: expr, Pos: p.position(tok)}
}

// ---- Binding power of the next token ----

func infixPrecedence(tok lexer.Token) int {
	switch tok.Type {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.COALESCE:
		return precCoalesce
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH:
		return precMultiply
	case lexer.BANG:
		// A '!' on a new line starts the next statement.
		if tok.Newline {
			return precNone
		}
		return precPostfix
	default:
		return precNone
	}
}

// ---- Infix and postfix ----

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	tok := p.advance()

	switch tok.Type {
	case lexer.BANG:
		return &ast.UnwrapExpr{Operand: left, Pos: p.position(tok)}
	case lexer.COALESCE:
		// Right-associative: recurse at the same precedence.
		right := p.parsePrecedence(prec)
		return &ast.BinaryExpr{Op: tok.Value, Left: left, Right: right, Pos: p.position(tok)}
	default:
		// Left-associative.
		right := p.parsePrecedence(prec + 1)
		return &ast.BinaryExpr{
			Op:    tok.Value,
			Left:  left,
			Right: right,
			Pos:   p.position(tok),
		}
	}
}

// parseCallExpr: <callee> ( [label:] arg, … )
func (p *Parser) parseCallExpr(callee lexer.Token) ast.Expr {
	p.advance() // consume (
	var args []*ast.Arg

	if !p.check(lexer.RPAREN) {
		args = append(args, p.parseArg())
		for p.match(lexer.COMMA) {
			args = append(args, p.parseArg())
		}
	}

	p.expect(lexer.RPAREN, "expected ')' after arguments")
	return &ast.CallExpr{Callee: callee.Value, Args: args, Pos: p.position(callee)}
}

func (p *Parser) parseArg() *ast.Arg {
	tok := p.peek()
	arg := &ast.Arg{Pos: p.position(tok)}
	if tok.Type == lexer.IDENT && p.peekAt(1).Type == lexer.COLON {
		p.advance() // label
		p.advance() // :
		arg.Label = tok.Value
	}
	arg.Value = p.parseExpression()
	return arg
}
