package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/pipeline/config"
	"github.com/tailored-agentic-units/pipeline/loader"
	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/registry"
)

type options struct {
	configFile  string
	verbose     bool
	file        string
	inputs      []string
	inputsFile  string
	events      bool
	metricsFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	reg := registry.New()

	root := &cobra.Command{
		Use:           "pipeline",
		Short:         "Run declarative named-field pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if err := observability.RegisterObserver("slog", observability.NewSlogObserver(logger)); err != nil {
				return err
			}
			return registerBuiltins(reg, cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to pipeline config (JSON or YAML)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline and print its outputs as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts, reg)
		},
	}
	fileFlag(runCmd, opts)
	runCmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, "Input field as name=value (repeatable, values parsed as YAML)")
	runCmd.Flags().StringVar(&opts.inputsFile, "inputs", "", "YAML file holding one input record, or a list of records to run as a batch")
	runCmd.Flags().BoolVar(&opts.events, "events", false, "Print the run's events after the outputs")
	runCmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a pipeline definition without running it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := load(opts, reg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: pipeline %s %s -> %s\n", p.Name(), p.Inputs(), p.Outputs())
			return nil
		},
	}
	fileFlag(validateCmd, opts)

	stagesCmd := &cobra.Command{
		Use:   "stages",
		Short: "Print the declared graph of a pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := load(opts, reg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), p.Describe())
			return nil
		},
	}
	fileFlag(stagesCmd, opts)

	builtinsCmd := &cobra.Command{
		Use:   "builtins",
		Short: "List the runnables pipeline files can reference",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range reg.Names() {
				r, _ := reg.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", name, r.Inputs(), r.Outputs())
			}
		},
	}

	root.AddCommand(runCmd, validateCmd, stagesCmd, builtinsCmd)
	return root
}

func fileFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the pipeline definition (.hcl)")
	_ = cmd.MarkFlagRequired("file")
}

// load compiles the definition file with the configured settings. extra
// observers receive events alongside the configured one.
func load(opts *options, reg *registry.Registry, extra ...observability.Observer) (*pipeline.Pipeline, error) {
	cfg := config.DefaultPipelineConfig("pipeline")
	if opts.configFile != "" {
		loaded, err := config.LoadConfig(opts.configFile, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	configured, err := pipeline.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}

	if len(extra) > 0 {
		base, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, err
		}
		observer := observability.NewMultiObserver(append([]observability.Observer{base}, extra...)...)
		configured = append(configured, pipeline.WithObserver(observer))
	}

	return loader.LoadFile(opts.file, reg, configured...)
}

func runPipeline(cmd *cobra.Command, opts *options, reg *registry.Registry) error {
	batch, err := readInputs(opts.inputsFile, opts.inputs)
	if err != nil {
		return err
	}

	var (
		extra     []observability.Observer
		recorder  *observability.Recorder
		collector *prometheus.Registry
	)
	if opts.events {
		recorder = observability.NewRecorder()
		extra = append(extra, recorder)
	}
	if opts.metricsFile != "" {
		collector = prometheus.NewRegistry()
		prom, err := observability.NewPrometheusObserver(collector)
		if err != nil {
			return err
		}
		extra = append(extra, prom)
	}

	p, err := load(opts, reg, extra...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if err := execute(ctx, p, batch, out); err != nil {
		return err
	}

	if recorder != nil {
		printEvents(out, recorder.Events())
	}
	if collector != nil {
		if err := prometheus.WriteToTextfile(opts.metricsFile, collector); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// execute runs a single record directly and several as a batch, encoding
// the results as YAML.
func execute(ctx context.Context, p *pipeline.Pipeline, batch []record.Record, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if len(batch) == 1 {
		result, err := p.Run(ctx, batch[0])
		if err != nil {
			return err
		}
		return enc.Encode(map[string]any(result))
	}

	results, err := p.RunBatch(ctx, batch, 0)
	if err != nil {
		return err
	}
	docs := make([]map[string]any, len(results))
	for i, r := range results {
		docs[i] = r
	}
	return enc.Encode(docs)
}

func printEvents(w io.Writer, events []observability.Event) {
	for _, e := range events {
		fmt.Fprintf(w, "# %s %-5s %s\n", e.Timestamp.Format("15:04:05.000"), e.Level, e.Type)
	}
}
