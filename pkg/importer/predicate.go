package importer

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wwspec/pkg/descriptor"
)

// predicate converts a hidden arrow function into a serialized Condition.
//
// Accepted bodies, with p the single parameter:
//
//	!p.x        falsy
//	p.x, !!p.x  truthy
//	p.x === v   equals     (also ==, and with the operands swapped)
//	p.x !== v   notEquals  (also !=)
//
// Bracket access p["x"] is accepted wherever p.x is.
func (c *converter) predicate(fn *ts.Node) (descriptor.Value, error) {
	param, err := c.singleParam(fn)
	if err != nil {
		return descriptor.Value{}, err
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return descriptor.Value{}, c.errorf(fn, "hidden predicate has no body")
	}
	expr, err := c.returnedExpression(body)
	if err != nil {
		return descriptor.Value{}, err
	}

	cond, err := c.condition(expr, param)
	if err != nil {
		return descriptor.Value{}, err
	}
	return condition(cond), nil
}

func condition(cond descriptor.Condition) descriptor.Value {
	fields := []descriptor.Field{
		descriptor.F("property", descriptor.String(cond.Property)),
		descriptor.F("op", descriptor.String(string(cond.Op))),
	}
	if cond.Value != nil {
		fields = append(fields, descriptor.F("value", *cond.Value))
	}
	return descriptor.ObjectOf(fields...)
}

func (c *converter) singleParam(fn *ts.Node) (string, error) {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return c.text(p), nil
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() != 1 {
		return "", c.errorf(fn, "hidden predicate must take exactly one parameter")
	}
	p := params.NamedChild(0)
	if p.Kind() == "required_parameter" {
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			p = pattern
		}
	}
	if p.Kind() != "identifier" {
		return "", c.errorf(p, "hidden predicate parameter must be a plain identifier")
	}
	return c.text(p), nil
}

// returnedExpression returns an expression body, or the argument of the
// only statement of a block body when it is a return.
func (c *converter) returnedExpression(body *ts.Node) (*ts.Node, error) {
	if body.Kind() != "statement_block" {
		return unwrap(body), nil
	}
	var stmts []*ts.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		if s := body.NamedChild(i); s.Kind() != "comment" {
			stmts = append(stmts, s)
		}
	}
	if len(stmts) != 1 || stmts[0].Kind() != "return_statement" || stmts[0].NamedChildCount() == 0 {
		return nil, c.errorf(body, "hidden predicate block must be a single return statement")
	}
	return unwrap(stmts[0].NamedChild(0)), nil
}

func (c *converter) condition(expr *ts.Node, param string) (descriptor.Condition, error) {
	switch expr.Kind() {
	case "unary_expression":
		op := expr.ChildByFieldName("operator")
		arg := expr.ChildByFieldName("argument")
		if op == nil || arg == nil || c.text(op) != "!" {
			break
		}
		inner, err := c.condition(unwrap(arg), param)
		if err != nil {
			return descriptor.Condition{}, err
		}
		switch inner.Op {
		case descriptor.OpTruthy:
			inner.Op = descriptor.OpFalsy
		case descriptor.OpFalsy:
			inner.Op = descriptor.OpTruthy
		case descriptor.OpEquals:
			inner.Op = descriptor.OpNotEquals
		case descriptor.OpNotEquals:
			inner.Op = descriptor.OpEquals
		}
		return inner, nil

	case "member_expression", "subscript_expression":
		if name, ok := c.propertyOf(expr, param); ok {
			return descriptor.Condition{Property: name, Op: descriptor.OpTruthy}, nil
		}

	case "binary_expression":
		op := expr.ChildByFieldName("operator")
		left := expr.ChildByFieldName("left")
		right := expr.ChildByFieldName("right")
		if op == nil || left == nil || right == nil {
			break
		}
		var cmp descriptor.Operator
		switch c.text(op) {
		case "===", "==":
			cmp = descriptor.OpEquals
		case "!==", "!=":
			cmp = descriptor.OpNotEquals
		default:
			return descriptor.Condition{}, c.errorf(op, "unsupported operator %q in hidden predicate", c.text(op))
		}
		name, ok := c.propertyOf(unwrap(left), param)
		literal := right
		if !ok {
			name, ok = c.propertyOf(unwrap(right), param)
			literal = left
		}
		if !ok {
			break
		}
		v, err := c.value(literal)
		if err != nil {
			return descriptor.Condition{}, err
		}
		return descriptor.Condition{Property: name, Op: cmp, Value: &v}, nil
	}
	return descriptor.Condition{}, c.errorf(expr, "unsupported hidden predicate: %s", abbreviate(c.text(expr)))
}

// propertyOf matches param.name, param?.name and param["name"].
func (c *converter) propertyOf(n *ts.Node, param string) (string, bool) {
	obj := n.ChildByFieldName("object")
	if obj == nil || obj.Kind() != "identifier" || c.text(obj) != param {
		return "", false
	}
	switch n.Kind() {
	case "member_expression":
		prop := n.ChildByFieldName("property")
		if prop == nil {
			return "", false
		}
		return c.text(prop), true
	case "subscript_expression":
		index := n.ChildByFieldName("index")
		if index == nil || index.Kind() != "string" {
			return "", false
		}
		s, err := unquoteJS(c.text(index))
		if err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}
