package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novadoc/internal/catalog"
	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
	"github.com/tuannm99/novadoc/internal/sql/parser"
)

func mustParse(t *testing.T, in string) parser.Statement {
	t.Helper()
	stmt, err := parser.Parse(in)
	require.NoError(t, err)
	return stmt
}

// newScores builds table "s" {id integer AI, name string NN, score integer}
// with scores 1, 2, 1.
func newScores(t *testing.T) *catalog.Tree {
	t.Helper()
	tr := catalog.NewTree()
	tbl, err := tr.GetOrCreate("s")
	require.NoError(t, err)
	require.NoError(t, tr.DeclareSchema(tbl, []record.Column{
		{Name: "id", Type: record.ColInteger, Modifiers: record.Modifiers(0).With(record.AutoIncrement)},
		{Name: "name", Type: record.ColString, Modifiers: record.Modifiers(0).With(record.NotNull)},
		{Name: "score", Type: record.ColInteger},
	}))
	for _, sc := range []int32{1, 2, 1} {
		row := record.NewRow()
		row.Set("id", record.FromInt64(record.KindInteger, tbl.Counter("id")))
		row.Set("score", record.Integer(sc))
		tr.AppendRow(tbl, row)
	}
	return tr
}

func TestBuildPlan_CreateTable(t *testing.T) {
	p, err := BuildPlan(mustParse(t, "SETUP TABLE 'a.b';"), catalog.NewTree())
	require.NoError(t, err)
	plan, ok := p.(*CreateTablePlan)
	require.True(t, ok)
	assert.Equal(t, "a.b", plan.Path)

	_, err = BuildPlan(mustParse(t, "SETUP TABLE '';"), catalog.NewTree())
	require.ErrorIs(t, err, dberr.ErrUnknownField)
}

func TestBuildPlan_DeclareSchema(t *testing.T) {
	tr := newScores(t)

	p, err := BuildPlan(mustParse(t, "IN TABLE 's' SCHEMA IS ('score' int, 'name' string, 'id' integer);"), tr)
	require.NoError(t, err)
	assert.True(t, p.(*DeclareSchemaPlan).Noop)

	_, err = BuildPlan(mustParse(t, "IN TABLE 's' SCHEMA IS ('score' int);"), tr)
	require.ErrorIs(t, err, dberr.ErrSchemaConflict)

	p, err = BuildPlan(mustParse(t, "IN TABLE 'fresh' SCHEMA IS ('a' int);"), tr)
	require.NoError(t, err)
	assert.False(t, p.(*DeclareSchemaPlan).Noop)
	_, exists := tr.Lookup("fresh")
	assert.False(t, exists, "planning must not create tables")

	_, err = BuildPlan(mustParse(t, "IN TABLE 'x' SCHEMA IS ();"), tr)
	require.ErrorIs(t, err, dberr.ErrEmptySchema)

	_, err = BuildPlan(mustParse(t, "IN TABLE 'x' SCHEMA IS ('attributes' int);"), tr)
	require.ErrorIs(t, err, dberr.ErrReservedName)
}

func TestBuildPlan_AppendRow(t *testing.T) {
	tr := newScores(t)

	p, err := BuildPlan(mustParse(t, "IN TABLE 's' SET KEY 'score' VALUE TO 7;"), tr)
	require.NoError(t, err)
	plan := p.(*AppendRowPlan)
	assert.Equal(t, []Assignment{
		{Column: "score", Value: record.Integer(7)},
		{Column: "id", Value: record.Integer(3)},
	}, plan.Fields)

	tbl, _ := tr.Lookup("s")
	assert.Len(t, tbl.Rows, 3, "planning must not append")
	assert.Equal(t, int64(3), tbl.Counter("id"))
}

func TestBuildPlan_AppendRowIgnoresExplicitAI(t *testing.T) {
	tr := newScores(t)
	p, err := BuildPlan(mustParse(t, "IN TABLE 's' SET KEY 'id' VALUE TO 99;"), tr)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{Column: "id", Value: record.Integer(3)}}, p.(*AppendRowPlan).Fields)
}

func TestBuildPlan_AppendRowErrors(t *testing.T) {
	tr := newScores(t)
	_, err := tr.GetOrCreate("bare")
	require.NoError(t, err)

	cases := map[string]error{
		"IN TABLE 'nope' SET KEY 'a' VALUE TO 1;":      dberr.ErrUnknownField,
		"IN TABLE 'bare' SET KEY 'a' VALUE TO 1;":      dberr.ErrSchemaNotDeclared,
		"IN TABLE 's' SET KEY 'missing' VALUE TO 1;":   dberr.ErrUnknownField,
		"IN TABLE 's' SET KEY 'name' VALUE TO NULL;":   dberr.ErrNullViolation,
		"IN TABLE 's' SET KEY 'score' VALUE TO 'one';": dberr.ErrTypeMismatch,
		"IN TABLE 's' SET KEY 'score' VALUE TO one;":   dberr.ErrMalformedLiteral,
	}
	for in, want := range cases {
		_, err := BuildPlan(mustParse(t, in), tr)
		require.ErrorIs(t, err, want, in)
	}
}

func TestBuildPlan_UpdateRows(t *testing.T) {
	tr := newScores(t)

	p, err := BuildPlan(mustParse(t, "IN TABLE 's' SET KEY 'name' VALUE TO 'x' WHEREVER 'score' = 1;"), tr)
	require.NoError(t, err)
	plan := p.(*UpdateRowsPlan)
	assert.Equal(t, []int{0, 2}, plan.Rows)
	assert.Equal(t, Assignment{Column: "name", Value: record.String("x")}, plan.Set)

	p, err = BuildPlan(mustParse(t, "IN TABLE 's' SET KEY 'name' VALUE TO 'x' WHEREVER 'score' > 5;"), tr)
	require.NoError(t, err)
	assert.Empty(t, p.(*UpdateRowsPlan).Rows)

	// no row has a name yet
	p, err = BuildPlan(mustParse(t, "IN TABLE 's' SET KEY 'score' VALUE TO 0 WHEREVER 'name' = NULL;"), tr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, p.(*UpdateRowsPlan).Rows)
}

func TestBuildPlan_UpdateRowsErrors(t *testing.T) {
	tr := newScores(t)
	cases := map[string]error{
		"IN TABLE 's' SET KEY 'name' VALUE TO 'x' WHEREVER 'ghost' = 1;":   dberr.ErrUnknownField,
		"IN TABLE 's' SET KEY 'name' VALUE TO 'x' WHEREVER 'name' > 'a';":  dberr.ErrUnsupportedComparator,
		"IN TABLE 's' SET KEY 'name' VALUE TO NULL WHEREVER 'score' = 1;":  dberr.ErrNullViolation,
		"IN TABLE 's' SET KEY 'id' VALUE TO 5 WHEREVER 'score' = 1;":       dberr.ErrTypeMismatch,
		"IN TABLE 's' SET KEY 'name' VALUE TO 'x' WHEREVER 'score' = 'a';": dberr.ErrTypeMismatch,
	}
	for in, want := range cases {
		_, err := BuildPlan(mustParse(t, in), tr)
		require.ErrorIs(t, err, want, in)
	}
}
