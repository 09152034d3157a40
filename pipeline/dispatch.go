package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Dispatch is a conditional node keyed on one field. It runs the first case
// whose value equals the key, or the default arm when none does, and then
// always runs the finally arm. Each arm is a nested pipeline whose outputs
// are merged into the invoking scope as soon as it completes, so finally
// sees the selected arm's fields and wins on collision.
type Dispatch struct {
	name     string
	key      string
	cases    []dispatchCase
	fallback *Pipeline
	finally  *Pipeline
	observer observability.Observer
	tracing  bool
	errs     []error
}

type dispatchCase struct {
	value  any
	branch *Pipeline
}

func newDispatch(p *Pipeline, name, key string) *Dispatch {
	d := &Dispatch{
		name:     name,
		key:      key,
		observer: p.observer,
		tracing:  p.tracing,
	}
	if key == "" {
		d.errs = append(d.errs, configError(name, "dispatch key is empty"))
	}
	return d
}

func (d *Dispatch) Name() string {
	return d.name
}

// Key returns the field the node dispatches on.
func (d *Dispatch) Key() string {
	return d.key
}

func (d *Dispatch) Inputs() schema.Schema {
	return schema.Names(d.key)
}

// Outputs is the union of every arm's outputs in declaration order. Which
// of them a run produces depends on the selected arm.
func (d *Dispatch) Outputs() schema.Schema {
	out := schema.Empty()
	for _, b := range d.arms() {
		out = out.Union(b.Outputs())
	}
	return out
}

func (d *Dispatch) Cacheable() bool {
	return false
}

func (d *Dispatch) ClearCache() {
	for _, b := range d.arms() {
		b.ClearCache()
	}
}

func (d *Dispatch) validate() error {
	errs := append([]error(nil), d.errs...)
	for _, b := range d.arms() {
		errs = append(errs, b.validate())
	}
	return errors.Join(errs...)
}

func (d *Dispatch) arms() []*Pipeline {
	arms := make([]*Pipeline, 0, len(d.cases)+2)
	for _, c := range d.cases {
		arms = append(arms, c.branch)
	}
	if d.fallback != nil {
		arms = append(arms, d.fallback)
	}
	if d.finally != nil {
		arms = append(arms, d.finally)
	}
	return arms
}

// selectArm returns the first case equal to value, else the default arm.
func (d *Dispatch) selectArm(value any) *Pipeline {
	for _, c := range d.cases {
		if equal(c.value, value) {
			return c.branch
		}
	}
	return d.fallback
}

// Invoke runs the node in a scope of its own holding in.
func (d *Dispatch) Invoke(ctx context.Context, in record.Record) (record.Record, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if err := d.Inputs().Validate(in); err != nil {
		return nil, err
	}

	ctx, _ = ensureRun(ctx, d.name, d.observer, d.tracing)
	sc := newScope(ctx, d.name, nil, nil)
	sc.store.Merge(ctx, in)
	return d.run(ctx, in, sc)
}

func (d *Dispatch) run(ctx context.Context, in record.Record, sc *scope) (record.Record, error) {
	value := in[d.key]
	selected := d.selectArm(value)

	arm := ""
	if selected != nil {
		arm = selected.name
	}
	runFrom(ctx).emit(ctx, EventDispatchSelect, observability.LevelVerbose, map[string]any{
		"dispatch": d.name,
		"key":      d.key,
		"value":    value,
		"arm":      arm,
	})

	out := make(record.Record)
	for _, b := range []*Pipeline{selected, d.finally} {
		if b == nil {
			continue
		}

		args, err := sc.resolveAll(ctx, b.Inputs())
		if err != nil {
			return nil, &StageError{Pipeline: sc.name, Stage: b.name, Index: -1, Err: err}
		}

		res, err := b.run(ctx, args, sc)
		if err != nil {
			return nil, &StageError{Pipeline: sc.name, Stage: b.name, Index: -1, Err: err}
		}

		sc.store.Merge(ctx, res)
		out.Merge(res)
	}
	return out, nil
}

// equal reports whether a case value matches a key value. Values of
// different dynamic types never match, and neither do non-comparable ones.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// Match declares the arms of a value-keyed dispatch. It is only valid
// inside the callback passed to Pipeline.Match.
type Match struct {
	owner    *Pipeline
	dispatch *Dispatch
}

// Case adds an arm run when the key equals value. Cases are tried in
// declaration order and the first match wins.
func (m *Match) Case(value any, build func(*Pipeline)) *Match {
	d := m.dispatch
	if value != nil && !reflect.ValueOf(value).Comparable() {
		d.errs = append(d.errs, configError(d.name, "case value of type %T is not comparable", value))
		return m
	}
	name := fmt.Sprintf("%s/case(%v)", d.name, value)
	d.cases = append(d.cases, dispatchCase{value: value, branch: m.owner.arm(name, build)})
	return m
}

// Default adds the arm run when no case matches.
func (m *Match) Default(build func(*Pipeline)) *Match {
	d := m.dispatch
	if d.fallback != nil {
		d.errs = append(d.errs, configError(d.name, "default declared more than once"))
		return m
	}
	d.fallback = m.owner.arm(d.name+"/default", build)
	return m
}

// Finally adds the arm run after the case or default arm, or alone when
// neither ran.
func (m *Match) Finally(build func(*Pipeline)) *Match {
	d := m.dispatch
	if d.finally != nil {
		d.errs = append(d.errs, configError(d.name, "finally declared more than once"))
		return m
	}
	d.finally = m.owner.arm(d.name+"/finally", build)
	return m
}

// Match appends a dispatch node keyed on key, declared by build.
func (p *Pipeline) Match(key string, build func(*Match)) *Pipeline {
	d := newDispatch(p, fmt.Sprintf("match(%s)", key), key)
	if build == nil {
		d.errs = append(d.errs, configError(d.name, "match has no builder"))
	} else {
		build(&Match{owner: p, dispatch: d})
	}
	return p.Stage(d)
}

// If appends a dispatch node that runs build when field is the boolean
// true. ElseIf and Else may follow immediately to extend the chain.
func (p *Pipeline) If(field string, build func(*Pipeline)) *Pipeline {
	d := newDispatch(p, fmt.Sprintf("if(%s)", field), field)
	d.cases = append(d.cases, dispatchCase{value: true, branch: p.arm(d.name+"/then", build)})
	p.Stage(d)
	p.open = d
	return p
}

// ElseIf extends the open chain with a further condition. It nests a new
// dispatch node inside the default arm of the previous one.
func (p *Pipeline) ElseIf(field string, build func(*Pipeline)) *Pipeline {
	if p.open == nil {
		p.fail("elif(%s) does not follow if", field)
		return p
	}

	prev := p.open
	d := newDispatch(p, fmt.Sprintf("elif(%s)", field), field)
	d.cases = append(d.cases, dispatchCase{value: true, branch: p.arm(d.name+"/then", build)})

	fallback := p.child(prev.name + "/else")
	fallback.Stage(d)
	prev.fallback = fallback
	p.open = d
	return p
}

// Else closes the open chain with the arm run when no condition held.
func (p *Pipeline) Else(build func(*Pipeline)) *Pipeline {
	if p.open == nil {
		p.fail("else does not follow if")
		return p
	}
	p.open.fallback = p.arm(p.open.name+"/else", build)
	p.open = nil
	return p
}
