package main

import (
	"fmt"
	"strings"

	"github.com/cguess/prepcook/internal/config"
	"github.com/cguess/prepcook/internal/format"
	"github.com/cguess/prepcook/internal/gdocs"
	"github.com/cguess/prepcook/internal/pipeline"
	"github.com/cguess/prepcook/internal/ui"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	documentID string
	input      string
	formats    []string
	stdout     string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "prepcook",
		Short: "Export a synonym list from a Google Doc for Solr and Chewy",
		Long: `prepcook reads a Google Doc holding a synonym list and writes it out as a
Solr synonyms file and a Chewy synonym array.

Everything above the "-----" line is ignored. After it, each Heading 2
paragraph names a headword and the paragraph that follows lists its
synonyms separated by commas. Lines starting with "#" are comments.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.documentID, "id", "", "Document ID or URL; get this from the URL of the document (prompted if omitted)")
	f.StringVarP(&opts.input, "input", "i", "", "Read an exported document (.json, .docx, .html, .md) instead of calling the API")
	f.String("solr", def.SolrOutput, "The name of the Solr output file")
	f.String("chewy", def.ChewyOutput, "The name of the Chewy output file")
	f.StringSliceVar(&opts.formats, "format", []string{format.Solr, format.Chewy}, "Output formats to write")
	f.StringVar(&opts.stdout, "stdout", "", "Print one format to stdout instead of writing files")
	cmd.MarkFlagsMutuallyExclusive("id", "input")
	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := newLogger(cmd.ErrOrStderr(), root.verbose)

	var targets []pipeline.Target
	if opts.stdout != "" {
		if _, ok := format.Writers[opts.stdout]; !ok {
			return fmt.Errorf("unknown output format %q (want one of %s)", opts.stdout, strings.Join(format.Names(), ", "))
		}
	} else if targets, err = pipeline.Targets(cfg, opts.formats); err != nil {
		return err
	}

	src := pipeline.Source{InputFile: opts.input}
	var fetcher pipeline.Fetcher
	if opts.input == "" {
		id := opts.documentID
		if id == "" {
			if id, err = ui.PromptDocumentID(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		src.DocumentID = gdocs.ParseDocumentID(id)

		client, err := newDocsClient(ctx, cfg, log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fetcher = client
	}

	exp := pipeline.NewExporter(fetcher, cfg, log)
	out := cmd.OutOrStdout()

	if opts.stdout != "" {
		built, err := exp.Build(ctx, src)
		if err != nil {
			return err
		}
		body, err := pipeline.Render(opts.stdout, built.Result)
		if err != nil {
			return err
		}
		_, err = out.Write(body)
		return err
	}

	exp.OnSaved = func(t pipeline.Target) {
		ui.Saved(out, t.Format, t.Path)
	}
	_, err = exp.Run(ctx, src, targets)
	return err
}
