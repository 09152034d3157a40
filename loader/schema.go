package loader

import "github.com/hashicorp/hcl/v2"

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "pipeline", LabelNames: []string{"name"}},
	},
}

var bodyBlocks = []hcl.BlockHeaderSchema{
	{Type: "input", LabelNames: []string{"name"}},
	{Type: "output", LabelNames: []string{"name"}},
	{Type: "provider", LabelNames: []string{"runnable"}},
	{Type: "stage", LabelNames: []string{"runnable"}},
	{Type: "branch", LabelNames: []string{"name"}},
	{Type: "match", LabelNames: []string{"key"}},
	{Type: "when", LabelNames: []string{"field"}},
	{Type: "elsewhen", LabelNames: []string{"field"}},
	{Type: "otherwise"},
}

var bodySchema = &hcl.BodySchema{Blocks: bodyBlocks}

var caseSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value", Required: true},
	},
	Blocks: bodyBlocks,
}

var matchSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "case"},
		{Type: "default"},
		{Type: "finally"},
	},
}

var fieldSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
	},
}

var emptySchema = &hcl.BodySchema{}
