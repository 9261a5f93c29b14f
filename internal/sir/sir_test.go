package sir

import (
	"testing"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/types"
)

func TestConstCarriesDecidedType(t *testing.T) {
	c := &Const{ExprBase: NewExprBase(1, ast.Pos{}, types.Int), Kind: ast.IntLit, Value: int64(3)}
	if c.TypeOf().Kind != types.KindInt {
		t.Fatalf("expected Int, got %s", c.TypeOf())
	}
	if c.String() != "3" {
		t.Errorf("expected \"3\", got %q", c.String())
	}
}

func TestAssignAcceptsIndexAndAttrTargets(t *testing.T) {
	list := &Var{ExprBase: NewExprBase(1, ast.Pos{}, types.List(types.Int))}
	idx := &Index{ExprBase: NewExprBase(2, ast.Pos{}, types.Int), Value: list, Key: &Const{ExprBase: NewExprBase(3, ast.Pos{}, types.Int), Value: int64(0)}}
	assign := &Assign{StmtBase: NewStmtBase(4, ast.Pos{}), Target: idx, Value: &Const{ExprBase: NewExprBase(5, ast.Pos{}, types.Int), Value: int64(9)}}
	if assign.Target != idx {
		t.Error("expected Target to carry through the Index node")
	}
	attr := &Attr{ExprBase: NewExprBase(6, ast.Pos{}, types.Int), Value: list, Name: "count"}
	fieldAssign := &Assign{StmtBase: NewStmtBase(7, ast.Pos{}), Target: attr, Value: assign.Value}
	if fieldAssign.Target != attr {
		t.Error("expected Target to carry through the Attr node")
	}
}

func TestContainerOpKindStrings(t *testing.T) {
	cases := map[ContainerOpKind]string{
		OpLen: "len", OpAppend: "append", OpGet: "get", OpSet: "set",
		OpContains: "contains", OpIter: "iter", OpMap: "map",
		OpFilter: "filter", OpComprehension: "comprehension",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d: expected %q, got %q", k, want, k.String())
		}
	}
}

func TestClassRecordHasNoOpenInheritance(t *testing.T) {
	r := ClassRecord{Name: "Counter", Base: ""}
	if r.Base != "" {
		t.Error("expected empty Base for a class with no parent")
	}
}
