package executor

import (
	"fmt"
	"log/slog"

	"github.com/tuannm99/novadoc/internal/catalog"
	"github.com/tuannm99/novadoc/internal/record"
	"github.com/tuannm99/novadoc/internal/sql/parser"
	"github.com/tuannm99/novadoc/internal/sql/planner"
	"github.com/tuannm99/novadoc/internal/sql/stmtcache"
)

// Executor runs statements against one table tree.
//
// Executor is not safe for concurrent use: it owns the tree and mutates it in
// place. Callers sharing one Executor must serialize Exec calls.
type Executor struct {
	tree  *catalog.Tree
	cache *stmtcache.Cache
	log   *slog.Logger
}

type Option func(*Executor)

// WithStatementCache reuses parsed statements across calls.
func WithStatementCache(c *stmtcache.Cache) Option {
	return func(e *Executor) { e.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

func NewExecutor(tree *catalog.Tree, opts ...Option) *Executor {
	e := &Executor{tree: tree, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Executor) Tree() *catalog.Tree { return e.tree }

// Exec is the top-level entry: statement string -> Result.
// A failed statement leaves the tree exactly as it was.
func (e *Executor) Exec(input string) (*Result, error) {
	var (
		stmt parser.Statement
		err  error
	)
	if e.cache != nil {
		stmt, err = e.cache.Parse(input)
	} else {
		stmt, err = parser.Parse(input)
	}
	if err != nil {
		return nil, err
	}
	return e.ExecStatement(stmt)
}

// ExecStatement validates stmt into a plan, then applies it.
func (e *Executor) ExecStatement(stmt parser.Statement) (*Result, error) {
	plan, err := planner.BuildPlan(stmt, e.tree)
	if err != nil {
		return nil, err
	}
	return e.execPlan(plan)
}

func (e *Executor) execPlan(p planner.Plan) (*Result, error) {
	switch plan := p.(type) {
	case *planner.CreateTablePlan:
		return e.execCreateTable(plan)
	case *planner.DeclareSchemaPlan:
		return e.execDeclareSchema(plan)
	case *planner.AppendRowPlan:
		return e.execAppendRow(plan)
	case *planner.UpdateRowsPlan:
		return e.execUpdateRows(plan)
	default:
		return nil, fmt.Errorf("executor: unsupported plan type %T", p)
	}
}

// execCreateTable returns the first row of the (possibly pre-existing) table.
func (e *Executor) execCreateTable(p *planner.CreateTablePlan) (*Result, error) {
	t, err := e.tree.GetOrCreate(p.Path)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if len(t.Rows) > 0 {
		res.addGroup(groupOf(t.Rows[0]))
	}
	return res, nil
}

func (e *Executor) execDeclareSchema(p *planner.DeclareSchemaPlan) (*Result, error) {
	t, err := e.tree.GetOrCreate(p.Path)
	if err != nil {
		return nil, err
	}
	if !p.Noop {
		if err := e.tree.DeclareSchema(t, p.Columns); err != nil {
			return nil, err
		}
		e.log.Debug("executor: schema declared", "table", t.Path, "columns", len(p.Columns))
	}

	g := make(Group, 0, len(t.Schema.Cols))
	for _, c := range t.Schema.Cols {
		g = append(g, Field{Name: c.Name, Value: record.String(c.Type.String())})
	}
	res := &Result{}
	res.addGroup(g)
	return res, nil
}

func (e *Executor) execAppendRow(p *planner.AppendRowPlan) (*Result, error) {
	t, ok := e.tree.Lookup(p.Path)
	if !ok {
		return nil, fmt.Errorf("executor: table %q vanished after planning", p.Path)
	}

	row := record.NewRow()
	g := make(Group, 0, len(p.Fields))
	for _, f := range p.Fields {
		row.Set(f.Column, f.Value)
		g = append(g, Field{Name: f.Column, Value: f.Value})
	}
	idx := e.tree.AppendRow(t, row)
	e.log.Debug("executor: row appended", "table", t.Path, "row", idx)

	res := &Result{AffectedRows: 1}
	res.addGroup(g)
	return res, nil
}

func (e *Executor) execUpdateRows(p *planner.UpdateRowsPlan) (*Result, error) {
	t, ok := e.tree.Lookup(p.Path)
	if !ok {
		return nil, fmt.Errorf("executor: table %q vanished after planning", p.Path)
	}

	res := &Result{}
	for _, idx := range p.Rows {
		if err := e.tree.UpdateRow(t, idx, p.Set.Column, p.Set.Value); err != nil {
			return nil, err
		}
		res.addGroup(Group{{Name: p.Set.Column, Value: p.Set.Value}})
		res.AffectedRows++
	}
	if len(p.Rows) == 0 {
		e.log.Debug("executor: update matched no rows", "table", t.Path)
	}
	return res, nil
}
