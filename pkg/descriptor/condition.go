package descriptor

import "fmt"

// Operator selects how a Condition tests the referenced property.
type Operator string

const (
	// OpFalsy hides the property when the referenced value is falsy.
	OpFalsy Operator = "falsy"
	// OpTruthy hides the property when the referenced value is truthy.
	OpTruthy Operator = "truthy"
	// OpEquals hides the property when the referenced value equals Value.
	OpEquals Operator = "equals"
	// OpNotEquals hides the property when the referenced value differs from Value.
	OpNotEquals Operator = "notEquals"
)

// HiddenFunc decides visibility from the full set of current values.
// It must be pure.
type HiddenFunc func(values Values) bool

// Condition is the serializable form of a property's hidden predicate.
// It references exactly one top-level property.
type Condition struct {
	Property string   `json:"property"`
	Op       Operator `json:"op"`
	Value    *Value   `json:"value,omitempty"`
}

// HiddenUnless hides a property while the named toggle is falsy.
func HiddenUnless(property string) *Condition {
	return &Condition{Property: property, Op: OpFalsy}
}

// HiddenWhen hides a property while the named toggle is truthy.
func HiddenWhen(property string) *Condition {
	return &Condition{Property: property, Op: OpTruthy}
}

// HiddenIfEquals hides a property while the named value equals v.
func HiddenIfEquals(property string, v Value) *Condition {
	return &Condition{Property: property, Op: OpEquals, Value: &v}
}

// HiddenIfNotEquals hides a property while the named value differs from v.
func HiddenIfNotEquals(property string, v Value) *Condition {
	return &Condition{Property: property, Op: OpNotEquals, Value: &v}
}

// Hidden evaluates the condition. A missing property reads as null.
func (c *Condition) Hidden(values Values) bool {
	if c == nil {
		return false
	}
	current := values[c.Property]
	switch c.Op {
	case OpFalsy:
		return !current.Truthy()
	case OpTruthy:
		return current.Truthy()
	case OpEquals:
		return c.Value != nil && current.Equal(*c.Value)
	case OpNotEquals:
		return c.Value == nil || !current.Equal(*c.Value)
	}
	return false
}

// Func returns the condition as a HiddenFunc. A nil condition never hides.
func (c *Condition) Func() HiddenFunc {
	if c == nil {
		return func(Values) bool { return false }
	}
	cond := *c
	return cond.Hidden
}

func (c *Condition) validate() error {
	if c.Property == "" {
		return fmt.Errorf("hidden: property is required")
	}
	switch c.Op {
	case OpFalsy, OpTruthy:
		if c.Value != nil {
			return fmt.Errorf("hidden: operator %q takes no value", c.Op)
		}
	case OpEquals, OpNotEquals:
		if c.Value == nil {
			return fmt.Errorf("hidden: operator %q requires a value", c.Op)
		}
	default:
		return fmt.Errorf("hidden: unknown operator %q", c.Op)
	}
	return nil
}
