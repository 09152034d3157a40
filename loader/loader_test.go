package loader_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/pipeline/loader"
	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/registry"
	"github.com/tailored-agentic-units/pipeline/schema"
)

func label(name, value string) *pipeline.Function {
	return pipeline.NewFunction(name, schema.Empty(), schema.Names("label"),
		func(context.Context, record.Record) (any, error) {
			return value, nil
		})
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	runnables := []pipeline.Runnable{
		pipeline.Func1("double", "x", func(_ context.Context, x int) (int, error) {
			return x * 2, nil
		}, pipeline.Outputs("x2")),
		pipeline.Func1("add_one", "x2", func(_ context.Context, x2 int) (int, error) {
			return x2 + 1, nil
		}, pipeline.Outputs("x2plus1")),
		label("eleven", "eleven"),
		label("other", "other"),
		pipeline.Func1("done", "label", func(_ context.Context, l string) (string, error) {
			return l + "!", nil
		}, pipeline.Outputs("label")),
		label("yes", "yes"),
		label("maybe", "maybe"),
		label("no", "no"),
	}
	for _, r := range runnables {
		if err := reg.Register(r.Name(), r); err != nil {
			t.Fatalf("Register(%s) failed: %v", r.Name(), err)
		}
	}
	return reg
}

func TestLoadFile(t *testing.T) {
	p, err := loader.LoadFile("testdata/main.hcl", testRegistry(t))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if p.Name() != "main" {
		t.Errorf("expected name main, got %s", p.Name())
	}

	tests := []struct {
		x    int
		want record.Record
	}{
		{x: 5, want: record.Record{"x2plus1": 11, "label": "eleven!"}},
		{x: 6, want: record.Record{"x2plus1": 13, "label": "other!"}},
	}

	for _, tt := range tests {
		out, err := p.Run(context.Background(), record.Record{"x": tt.x})
		if err != nil {
			t.Fatalf("Run(x=%d) failed: %v", tt.x, err)
		}
		if diff := cmp.Diff(tt.want, out); diff != "" {
			t.Errorf("Run(x=%d) mismatch (-want +got):\n%s", tt.x, diff)
		}
	}
}

func TestLoad_DeclaredTypesChecked(t *testing.T) {
	p, err := loader.LoadFile("testdata/main.hcl", testRegistry(t))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	_, err = p.Run(context.Background(), record.Record{"x": "five"})

	var mismatch *pipeline.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected TypeMismatchError, got %v", err)
	}
}

func TestLoad_CollectionInputsFromYAML(t *testing.T) {
	src := `
pipeline "collections" {
  input "xs" {
    type = list(number)
  }
  input "meta" {
    type = object({ name = string, tags = map(string) })
  }
  output "count" {
    type = number
  }

  stage "count" {}
}
`
	reg := registry.New()
	count := pipeline.NewFunction("count", schema.Names("xs"), schema.Names("count"),
		func(_ context.Context, in record.Record) (any, error) {
			return len(in["xs"].([]any)), nil
		})
	if err := reg.Register("count", count); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	p, err := loader.Load([]byte(src), "collections.hcl", reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		want    record.Record
		wantErr bool
	}{
		{
			name: "sequence and mapping",
			doc:  "xs: [1, 2.5, 3]\nmeta: {name: a, tags: {env: dev}}\n",
			want: record.Record{"count": 3},
		},
		{
			name:    "mixed sequence",
			doc:     "xs: [1, two]\nmeta: {name: a, tags: {}}\n",
			wantErr: true,
		},
		{
			name:    "missing object attribute",
			doc:     "xs: [1]\nmeta: {tags: {}}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in record.Record
			if err := yaml.Unmarshal([]byte(tt.doc), &in); err != nil {
				t.Fatalf("failed to decode record: %v", err)
			}

			out, err := p.Run(context.Background(), in)
			if tt.wantErr {
				var mismatch *pipeline.TypeMismatchError
				if !errors.As(err, &mismatch) {
					t.Errorf("expected TypeMismatchError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("Run mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Conditional(t *testing.T) {
	src := `
pipeline "flags" {
  input "a" {
    type = bool
  }
  input "b" {
    type = bool
  }
  output "label" {}

  when "a" {
    stage "yes" {}
  }
  elsewhen "b" {
    stage "maybe" {}
  }
  otherwise {
    stage "no" {}
  }
}
`
	p, err := loader.Load([]byte(src), "flags.hcl", testRegistry(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		a, b bool
		want string
	}{
		{a: true, b: false, want: "yes"},
		{a: false, b: true, want: "maybe"},
		{a: false, b: false, want: "no"},
	}

	for _, tt := range tests {
		out, err := p.Run(context.Background(), record.Record{"a": tt.a, "b": tt.b})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out["label"] != tt.want {
			t.Errorf("a=%v b=%v: expected %s, got %v", tt.a, tt.b, tt.want, out["label"])
		}
	}
}

func TestLoad_BranchAndStringCases(t *testing.T) {
	src := `
pipeline "nested" {
  branch "inner" {
    match "mode" {
      case {
        value = "fast"
        stage "yes" {}
      }
      case {
        value = 1.5
        stage "maybe" {}
      }
    }
  }
}
`
	p, err := loader.Load([]byte(src), "nested.hcl", testRegistry(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		mode any
		want any
	}{
		{mode: "fast", want: "yes"},
		{mode: 1.5, want: "maybe"},
		{mode: "slow", want: nil},
	}

	for _, tt := range tests {
		out, err := p.Run(context.Background(), record.Record{"mode": tt.mode})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out["label"] != tt.want {
			t.Errorf("mode=%v: expected %v, got %v", tt.mode, tt.want, out["label"])
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax error",
			src:  `pipeline "main" {`,
			want: "failed to parse",
		},
		{
			name: "no pipeline block",
			src:  ``,
			want: "exactly one pipeline block",
		},
		{
			name: "two pipeline blocks",
			src:  "pipeline \"a\" {}\npipeline \"b\" {}\n",
			want: "exactly one pipeline block",
		},
		{
			name: "unknown runnable",
			src:  "pipeline \"main\" {\n  stage \"missing\" {}\n}\n",
			want: "Unknown runnable",
		},
		{
			name: "unknown block",
			src:  "pipeline \"main\" {\n  step \"double\" {}\n}\n",
			want: "failed to compile",
		},
		{
			name: "invalid type",
			src:  "pipeline \"main\" {\n  input \"x\" {\n    type = integer\n  }\n}\n",
			want: "failed to compile",
		},
		{
			name: "case without value",
			src:  "pipeline \"main\" {\n  match \"k\" {\n    case {\n      stage \"yes\" {}\n    }\n  }\n}\n",
			want: "failed to compile",
		},
		{
			name: "list case value",
			src:  "pipeline \"main\" {\n  match \"k\" {\n    case {\n      value = [1]\n      stage \"yes\" {}\n    }\n  }\n}\n",
			want: "Unsupported case value",
		},
		{
			name: "otherwise without when",
			src:  "pipeline \"main\" {\n  otherwise {\n    stage \"no\" {}\n  }\n}\n",
			want: "invalid pipeline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load([]byte(tt.src), "test.hcl", testRegistry(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_DefaultRegistry(t *testing.T) {
	fn := label("loader_default_test", "ok")
	if err := registry.Register(fn); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	src := "pipeline \"main\" {\n  stage \"loader_default_test\" {}\n}\n"
	p, err := loader.Load([]byte(src), "default.hcl", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out, err := p.Run(context.Background(), record.Record{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out["label"] != "ok" {
		t.Errorf("expected label ok, got %v", out["label"])
	}
}
