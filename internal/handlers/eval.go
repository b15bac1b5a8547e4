package handlers

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions is the function table available to argument expressions.
var functions = map[string]function.Function{
	"concat":    stdlib.ConcatFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"length":    stdlib.LengthFunc,
	"lower":     stdlib.LowerFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// ConsumedValues returns the values of the items meta consumes, keyed by
// item name. Items missing from the build context are skipped.
func ConsumedValues(meta model.BuilderMeta, bc *model.BuildContext) map[string]cty.Value {
	vals := make(map[string]cty.Value, len(meta.Consumes))
	for _, name := range meta.Consumes {
		if d, ok := bc.Data(name); ok {
			vals[name] = d.Value
		}
	}
	return vals
}

// EvalContext exposes the consumed items as HCL variables so argument
// expressions such as "${name}" resolve against the current run.
func EvalContext(meta model.BuilderMeta, bc *model.BuildContext) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: ConsumedValues(meta, bc),
		Functions: functions,
	}
}

// EvalString evaluates expr in the builder's context and requires a known,
// non-null string result.
func EvalString(expr hcl.Expression, meta model.BuilderMeta, bc *model.BuildContext) (string, error) {
	val, diags := expr.Value(EvalContext(meta, bc))
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("expression at %s produced no value", expr.Range())
	}
	if !val.Type().Equals(cty.String) {
		return "", fmt.Errorf("expression at %s must produce a string, got %s", expr.Range(), val.Type().FriendlyName())
	}
	return val.AsString(), nil
}
