package pipeline

import (
	"fmt"
	"strings"
)

// Describe renders the declared graph as an indented outline, one node per
// line, with each node's input and output schemas.
func (p *Pipeline) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline %s %s -> %s\n", p.name, p.Inputs(), p.Outputs())
	p.describe(&b, 1)
	return b.String()
}

func (p *Pipeline) describe(b *strings.Builder, depth int) {
	for _, r := range p.providers {
		describeNode(b, depth, "provide", r)
	}
	for _, r := range p.nodes {
		describeNode(b, depth, "stage", r)
	}
}

func describeNode(b *strings.Builder, depth int, role string, r Runnable) {
	indent := strings.Repeat("  ", depth)

	switch n := r.(type) {
	case *Pipeline:
		fmt.Fprintf(b, "%sbranch %s %s -> %s\n", indent, n.name, n.Inputs(), n.Outputs())
		n.describe(b, depth+1)
	case *Dispatch:
		fmt.Fprintf(b, "%s%s -> %s\n", indent, n.name, n.Outputs())
		for _, c := range n.cases {
			fmt.Fprintf(b, "%s  case %v\n", indent, c.value)
			c.branch.describe(b, depth+2)
		}
		if n.fallback != nil {
			fmt.Fprintf(b, "%s  default\n", indent)
			n.fallback.describe(b, depth+2)
		}
		if n.finally != nil {
			fmt.Fprintf(b, "%s  finally\n", indent)
			n.finally.describe(b, depth+2)
		}
	default:
		cached := ""
		if r.Cacheable() {
			cached = " cached"
		}
		fmt.Fprintf(b, "%s%s %s %s -> %s%s\n", indent, role, r.Name(), r.Inputs(), r.Outputs(), cached)
	}
}
