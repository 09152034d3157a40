package loader

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/tailored-agentic-units/pipeline/schema"
)

// field decodes an input or output block. A missing type is open.
func field(block *hcl.Block) (schema.Field, hcl.Diagnostics) {
	f := schema.Field{Name: block.Labels[0], Type: schema.Any}

	content, diags := block.Body.Content(fieldSchema)
	if diags.HasErrors() {
		return f, diags
	}

	attr, ok := content.Attributes["type"]
	if !ok {
		return f, diags
	}

	t, typeDiags := typeexpr.TypeConstraint(attr.Expr)
	diags = append(diags, typeDiags...)
	if typeDiags.HasErrors() {
		return f, diags
	}

	f.Type = schema.Cty(t)
	return f, diags
}

// caseValue evaluates a case value into the Go value a run compares against.
// Whole numbers become int, other numbers float64.
func caseValue(attr *hcl.Attribute) (any, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	value, err := goValue(v)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported case value",
			Detail:   err.Error(),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}
	return value, diags
}

func goValue(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	switch v.Type() {
	case cty.String:
		var s string
		err := gocty.FromCtyValue(v, &s)
		return s, err
	case cty.Bool:
		var b bool
		err := gocty.FromCtyValue(v, &b)
		return b, err
	case cty.Number:
		var i int
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		err := gocty.FromCtyValue(v, &f)
		return f, err
	}
	return nil, fmt.Errorf("unsupported case value type %s", v.Type().FriendlyName())
}
