package generator

import (
	"math"
	"strconv"
	"strings"

	"github.com/relc-lang/relc/internal/ast"
)

// serializeOps maps source comparison operators onto the emitted
// JavaScript-like notation: `==` surfaces as `===`.
var serializeOps = map[string]string{
	"==": "===",
	"!=": "!==",
}

// exprString serializes an expression in the infix notation the emitted
// descriptors use. VariableRefs are substituted from the current variable
// scope when bound; identifiers are kept verbatim.
func (g *Generator) exprString(e ast.Expr) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *ast.StringLit:
		return `"` + n.Value + `"`
	case *ast.RawStringLit:
		return n.Value
	case *ast.NumberLit:
		return formatNumber(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NullLit:
		return "null"
	case *ast.UndefinedLit:
		return "undefined"
	case *ast.IdentifierExpr:
		return n.Name
	case *ast.VariableRef:
		if folded := g.eval(n); folded != ast.Expr(n) {
			return g.exprString(folded)
		}
		return n.Name
	case *ast.FieldAccessExpr:
		return strings.Join(n.Path, ".")
	case *ast.FunctionCallExpr:
		return n.Name + "(" + g.exprListString(n.Args) + ")"
	case *ast.MethodCallExpr:
		recv := strings.Join(n.ReceiverPath, ".")
		return recv + "." + n.Method + "(" + g.exprListString(n.Args) + ")"
	case *ast.BinaryOpExpr:
		op := n.Op
		if mapped, ok := serializeOps[op]; ok {
			op = mapped
		}
		return g.exprString(n.Left) + " " + op + " " + g.exprString(n.Right)
	case *ast.UnaryOpExpr:
		return n.Op + g.exprString(n.Operand)
	case *ast.GroupExpr:
		return "(" + g.exprString(n.Inner) + ")"
	case *ast.ArrayExpr:
		return "[" + g.exprListString(n.Elems) + "]"
	case *ast.ObjectExpr:
		var parts []string
		for _, entry := range n.Entries {
			parts = append(parts, entry.Key+": "+g.exprString(entry.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.RangeExpr:
		return g.exprString(n.Start) + ".." + g.exprString(n.End)
	default:
		return ""
	}
}

func (g *Generator) exprListString(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = g.exprString(e)
	}
	return strings.Join(parts, ", ")
}

// formatNumber renders a double the way a JavaScript-family target writes
// it: integral values without a fraction, everything else with the shortest
// exact decimal form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// eval constant-folds an expression under the current variable scope. It is
// used when a `declare var` inside a function body evaluates its right-hand
// side, and when a bound VariableRef is serialized. Anything that cannot be
// folded is returned unchanged.
func (g *Generator) eval(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.VariableRef:
		return g.evalBinding(n, n.Name)
	case *ast.IdentifierExpr:
		return g.evalBinding(n, n.Name)
	case *ast.GroupExpr:
		return g.eval(n.Inner)
	case *ast.UnaryOpExpr:
		operand := g.eval(n.Operand)
		switch n.Op {
		case "-":
			if num, ok := operand.(*ast.NumberLit); ok {
				return &ast.NumberLit{Base: n.Base, Value: -num.Value}
			}
		case "!":
			if b, ok := operand.(*ast.BoolLit); ok {
				return &ast.BoolLit{Base: n.Base, Value: !b.Value}
			}
		}
		return n
	case *ast.BinaryOpExpr:
		return g.evalBinary(n)
	default:
		return e
	}
}

// evalBinding resolves a variable reference through the current scope,
// cutting self- and mutually-referential bindings by returning the node
// unchanged on re-entry.
func (g *Generator) evalBinding(node ast.Expr, name string) ast.Expr {
	if g.evaluating[name] {
		return node
	}
	v, ok := g.vars.Get(name)
	if !ok {
		return node
	}
	g.evaluating[name] = true
	defer delete(g.evaluating, name)
	return g.eval(v)
}

// evalBinary folds arithmetic, comparison, and logical operators. Numeric
// semantics follow IEEE-754 doubles literally; numeric equality uses an
// epsilon comparison at machine precision.
func (g *Generator) evalBinary(n *ast.BinaryOpExpr) ast.Expr {
	left := g.eval(n.Left)
	right := g.eval(n.Right)

	if ls, lok := left.(*ast.StringLit); lok && n.Op == "+" {
		if rs, rok := right.(*ast.StringLit); rok {
			return &ast.StringLit{Base: n.Base, Value: ls.Value + rs.Value}
		}
	}

	ln, lok := left.(*ast.NumberLit)
	rn, rok := right.(*ast.NumberLit)
	if lok && rok {
		switch n.Op {
		case "+":
			return &ast.NumberLit{Base: n.Base, Value: ln.Value + rn.Value}
		case "-":
			return &ast.NumberLit{Base: n.Base, Value: ln.Value - rn.Value}
		case "*":
			return &ast.NumberLit{Base: n.Base, Value: ln.Value * rn.Value}
		case "/":
			return &ast.NumberLit{Base: n.Base, Value: ln.Value / rn.Value}
		case "%":
			return &ast.NumberLit{Base: n.Base, Value: math.Mod(ln.Value, rn.Value)}
		case "==", "===":
			return &ast.BoolLit{Base: n.Base, Value: numEqual(ln.Value, rn.Value)}
		case "!=", "!==":
			return &ast.BoolLit{Base: n.Base, Value: !numEqual(ln.Value, rn.Value)}
		case "<":
			return &ast.BoolLit{Base: n.Base, Value: ln.Value < rn.Value}
		case "<=":
			return &ast.BoolLit{Base: n.Base, Value: ln.Value <= rn.Value}
		case ">":
			return &ast.BoolLit{Base: n.Base, Value: ln.Value > rn.Value}
		case ">=":
			return &ast.BoolLit{Base: n.Base, Value: ln.Value >= rn.Value}
		}
	}

	lb, lok := left.(*ast.BoolLit)
	rb, rok := right.(*ast.BoolLit)
	if lok && rok {
		switch n.Op {
		case "&&":
			return &ast.BoolLit{Base: n.Base, Value: lb.Value && rb.Value}
		case "||":
			return &ast.BoolLit{Base: n.Base, Value: lb.Value || rb.Value}
		}
	}

	if left == n.Left && right == n.Right {
		return n
	}
	return &ast.BinaryOpExpr{Base: n.Base, Left: left, Op: n.Op, Right: right}
}

// numEqual compares doubles with a machine-epsilon tolerance scaled by
// operand magnitude.
func numEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff < epsilonFor(a, b)
}

func epsilonFor(a, b float64) float64 {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		scale = 1
	}
	return scale * 2.220446049250313e-16
}
