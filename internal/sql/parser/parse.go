package parser

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
	"github.com/tuannm99/novadoc/internal/sql/predicate"
)

// Parse parses a single statement.
// Policy: statement MUST end with ';'
//
// Every failure is a dberr UnknownStatement error carrying the input.
func Parse(input string) (Statement, error) {
	stmt, err := parse(input)
	if err != nil {
		return nil, &dberr.Error{
			Code:  dberr.CodeUnknownStatement,
			Msg:   "unrecognized statement",
			Input: input,
			Cause: err,
		}
	}
	return stmt, nil
}

func parse(input string) (Statement, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, fmt.Errorf("empty statement")
	}
	if !strings.HasSuffix(s, ";") {
		return nil, fmt.Errorf("missing ';' terminator")
	}

	p := &parser{lx: NewLexer(s)}
	p.next()

	var (
		stmt Statement
		err  error
	)
	switch {
	case p.isKeyword("SETUP"):
		stmt, err = p.parseSetupTable()
	case p.isKeyword("IN"):
		stmt, err = p.parseInTable()
	default:
		return nil, fmt.Errorf("unknown statement")
	}
	if err != nil {
		return nil, err
	}

	if err := p.expect(Semicolon); err != nil {
		return nil, err
	}
	if p.cur.Type != EOF {
		return nil, fmt.Errorf("unexpected %s after ';'", p.cur)
	}
	return stmt, nil
}

type parser struct {
	lx  *Lexer
	cur Token
}

func (p *parser) next() { p.cur = p.lx.NextToken() }

func (p *parser) isKeyword(kw string) bool {
	return p.cur.Type == Word && strings.EqualFold(p.cur.Value, kw)
}

func (p *parser) keyword(kw string) error {
	if !p.isKeyword(kw) {
		return fmt.Errorf("expected %s, got %s", kw, p.cur)
	}
	p.next()
	return nil
}

func (p *parser) keywords(kws ...string) error {
	for _, kw := range kws {
		if err := p.keyword(kw); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) expect(tt TokenType) error {
	if p.cur.Type != tt {
		return fmt.Errorf("expected %s, got %s", tt, p.cur)
	}
	p.next()
	return nil
}

// quoted reads a '<name>' token.
func (p *parser) quoted(what string) (string, error) {
	if p.cur.Type != String {
		return "", fmt.Errorf("expected quoted %s, got %s", what, p.cur)
	}
	v := p.cur.Value
	p.next()
	return v, nil
}

// literal reads a value operand. WHEREVER is never taken as a bare literal.
func (p *parser) literal() (record.Literal, error) {
	tok := p.cur
	switch tok.Type {
	case String:
		p.next()
		return record.Quoted(tok.Value), nil
	case Number:
		p.next()
		return record.Number(tok.Value), nil
	case Word:
		if p.isKeyword("WHEREVER") {
			break
		}
		p.next()
		return record.Word(tok.Value), nil
	}
	return record.Literal{}, fmt.Errorf("expected a value, got %s", tok)
}

// SETUP TABLE '<name>'
func (p *parser) parseSetupTable() (Statement, error) {
	if err := p.keywords("SETUP", "TABLE"); err != nil {
		return nil, err
	}
	name, err := p.quoted("table name")
	if err != nil {
		return nil, err
	}
	return &SetupTableStmt{TableName: name}, nil
}

// IN TABLE '<name>' SCHEMA IS (...)
// IN TABLE '<name>' SET KEY '<col>' VALUE TO <literal> [WHEREVER '<col>' <op> <literal>]
func (p *parser) parseInTable() (Statement, error) {
	if err := p.keywords("IN", "TABLE"); err != nil {
		return nil, err
	}
	name, err := p.quoted("table name")
	if err != nil {
		return nil, err
	}

	switch {
	case p.isKeyword("SCHEMA"):
		return p.parseSchema(name)
	case p.isKeyword("SET"):
		return p.parseSetKey(name)
	default:
		return nil, fmt.Errorf("expected SCHEMA or SET, got %s", p.cur)
	}
}

func (p *parser) parseSchema(table string) (Statement, error) {
	if err := p.keywords("SCHEMA", "IS"); err != nil {
		return nil, err
	}
	if err := p.expect(ParenOpen); err != nil {
		return nil, err
	}

	stmt := &SchemaStmt{TableName: table}
	if p.cur.Type == ParenClose {
		p.next()
		return stmt, nil
	}

	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.cur.Type == Comma {
			p.next()
			continue
		}
		if err := p.expect(ParenClose); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

// '<name>' <type> [NN] [AI]
func (p *parser) parseColumnDef() (record.Column, error) {
	name, err := p.quoted("column name")
	if err != nil {
		return record.Column{}, err
	}

	if p.cur.Type != Word {
		return record.Column{}, fmt.Errorf("expected column type for %q, got %s", name, p.cur)
	}
	typ, ok := record.ParseColumnType(p.cur.Value)
	if !ok {
		return record.Column{}, fmt.Errorf("unknown column type %q", p.cur.Value)
	}
	p.next()

	col := record.Column{Name: name, Type: typ}
	for p.cur.Type == Word {
		m, ok := record.ParseModifier(p.cur.Value)
		if !ok {
			return record.Column{}, fmt.Errorf("unknown modifier %q for column %q", p.cur.Value, name)
		}
		col.Modifiers = col.Modifiers.With(m)
		p.next()
	}
	return col, nil
}

func (p *parser) parseSetKey(table string) (Statement, error) {
	if err := p.keywords("SET", "KEY"); err != nil {
		return nil, err
	}
	col, err := p.quoted("column name")
	if err != nil {
		return nil, err
	}
	if err := p.keywords("VALUE", "TO"); err != nil {
		return nil, err
	}
	val, err := p.literal()
	if err != nil {
		return nil, err
	}

	set := SetKeyStmt{TableName: table, Column: col, Value: val}
	if !p.isKeyword("WHEREVER") {
		return &set, nil
	}
	p.next()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return &SetKeyWhereStmt{SetKeyStmt: set, Where: cond}, nil
}

// '<col>' <op> <literal>
func (p *parser) parseCondition() (Condition, error) {
	col, err := p.quoted("filter column")
	if err != nil {
		return Condition{}, err
	}
	if p.cur.Type != Operator {
		return Condition{}, fmt.Errorf("expected comparator, got %s", p.cur)
	}
	op, ok := predicate.ParseComparator(p.cur.Value)
	if !ok {
		return Condition{}, fmt.Errorf("unknown comparator %q", p.cur.Value)
	}
	p.next()

	val, err := p.literal()
	if err != nil {
		return Condition{}, err
	}
	return Condition{Column: col, Op: op, Value: val}, nil
}
