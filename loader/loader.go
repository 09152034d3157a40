// Package loader compiles HCL pipeline definitions into pipelines. Stage and
// provider blocks name runnables held in a registry, so a definition file
// describes the graph while the Go code supplies the functions.
//
//	pipeline "main" {
//	  input "x" {
//	    type = number
//	  }
//
//	  stage "double" {}
//	  stage "add_one" {}
//
//	  match "x2plus1" {
//	    case {
//	      value = 11
//	      stage "print" {}
//	    }
//	    default {
//	      stage "print" {}
//	    }
//	  }
//	}
//
// Blocks are applied in source order. when, elsewhen, and otherwise build an
// if/elif/else chain over boolean fields.
package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/registry"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Loader compiles definitions against one registry.
type Loader struct {
	registry *registry.Registry
	opts     []pipeline.Option
}

// New creates a Loader resolving runnables in reg. A nil reg uses
// registry.Default. opts are applied to every compiled pipeline.
func New(reg *registry.Registry, opts ...pipeline.Option) *Loader {
	if reg == nil {
		reg = registry.Default
	}
	return &Loader{registry: reg, opts: opts}
}

// Load compiles the single pipeline block in src. filename is used in
// diagnostics only.
func Load(src []byte, filename string, reg *registry.Registry, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return New(reg, opts...).Load(src, filename)
}

// LoadFile reads and compiles the pipeline definition at path.
func LoadFile(path string, reg *registry.Registry, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return New(reg, opts...).LoadFile(path)
}

func (l *Loader) Load(src []byte, filename string) (*pipeline.Pipeline, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse pipeline file %s: %w", filename, diags)
	}
	return l.compileFile(file, filename)
}

func (l *Loader) LoadFile(path string) (*pipeline.Pipeline, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse pipeline file %s: %w", path, diags)
	}
	return l.compileFile(file, path)
}

func (l *Loader) compileFile(file *hcl.File, filename string) (*pipeline.Pipeline, error) {
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode pipeline file %s: %w", filename, diags)
	}

	if len(content.Blocks) != 1 {
		return nil, fmt.Errorf("pipeline file %s must declare exactly one pipeline block, found %d", filename, len(content.Blocks))
	}

	block := content.Blocks[0]
	p := pipeline.New(block.Labels[0], l.opts...)

	if diags := l.compile(block.Body, p); diags.HasErrors() {
		return nil, fmt.Errorf("failed to compile pipeline %s: %w", block.Labels[0], diags)
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("invalid pipeline %s: %w", block.Labels[0], err)
	}
	return p, nil
}

// compile applies the blocks of body to p in source order.
func (l *Loader) compile(body hcl.Body, p *pipeline.Pipeline) hcl.Diagnostics {
	content, diags := body.Content(bodySchema)
	if diags.HasErrors() {
		return diags
	}
	return append(diags, l.apply(content, p)...)
}

func (l *Loader) apply(content *hcl.BodyContent, p *pipeline.Pipeline) hcl.Diagnostics {
	var (
		diags           hcl.Diagnostics
		inputs, outputs []schema.Field
		pinIn, pinOut   bool
	)

	for _, block := range content.Blocks {
		switch block.Type {
		case "input":
			f, d := field(block)
			diags = append(diags, d...)
			inputs = append(inputs, f)
			pinIn = true
		case "output":
			f, d := field(block)
			diags = append(diags, d...)
			outputs = append(outputs, f)
			pinOut = true
		case "provider":
			if r, d := l.runnable(block); r != nil {
				p.Provide(r)
			} else {
				diags = append(diags, d...)
			}
		case "stage":
			if r, d := l.runnable(block); r != nil {
				p.Stage(r)
			} else {
				diags = append(diags, d...)
			}
		case "branch":
			p.Branch(block.Labels[0], func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		case "match":
			p.Match(block.Labels[0], func(m *pipeline.Match) {
				diags = append(diags, l.match(block.Body, m)...)
			})
		case "when":
			p.If(block.Labels[0], func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		case "elsewhen":
			p.ElseIf(block.Labels[0], func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		case "otherwise":
			p.Else(func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		}
	}

	if pinIn {
		p.Depends(schema.New(inputs...))
	}
	if pinOut {
		p.Returns(schema.New(outputs...))
	}
	return diags
}

func (l *Loader) match(body hcl.Body, m *pipeline.Match) hcl.Diagnostics {
	content, diags := body.Content(matchSchema)
	if diags.HasErrors() {
		return diags
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "case":
			diags = append(diags, l.matchCase(block, m)...)
		case "default":
			m.Default(func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		case "finally":
			m.Finally(func(b *pipeline.Pipeline) {
				diags = append(diags, l.compile(block.Body, b)...)
			})
		}
	}
	return diags
}

func (l *Loader) matchCase(block *hcl.Block, m *pipeline.Match) hcl.Diagnostics {
	content, diags := block.Body.Content(caseSchema)
	if diags.HasErrors() {
		return diags
	}

	value, d := caseValue(content.Attributes["value"])
	diags = append(diags, d...)
	if d.HasErrors() {
		return diags
	}

	m.Case(value, func(b *pipeline.Pipeline) {
		diags = append(diags, l.apply(content, b)...)
	})
	return diags
}

// runnable resolves the registry entry named by a stage or provider block.
func (l *Loader) runnable(block *hcl.Block) (pipeline.Runnable, hcl.Diagnostics) {
	_, diags := block.Body.Content(emptySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	name := block.Labels[0]
	r, ok := l.registry.Get(name)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown runnable",
			Detail:   fmt.Sprintf("No runnable named %q is registered.", name),
			Subject:  block.LabelRanges[0].Ptr(),
		}}
	}
	return r, nil
}
