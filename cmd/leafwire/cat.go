package main

import (
	"context"
	"io"

	"github.com/leafwire/leafwire/internal/errors"
	"github.com/leafwire/leafwire/pkg/export"
	"github.com/spf13/cobra"
)

func catCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <project-id> <doc-id-or-path>",
		Short: "Print the current text of a document",
		Long: `Join a project, fetch one document and print it to stdout.

The document is named by its id or by its path in the project tree, as
listed by leafwire info.

Examples:
  leafwire cat 5f2a... main.tex
  leafwire cat 5f2a... 5f2a0c...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return runCat(ctx, a, args[0], args[1], cmd.OutOrStdout())
			})
		},
	}

	return cmd
}

func runCat(ctx context.Context, a *app, projectID, ref string, w io.Writer) (err error) {
	s, info, err := a.connect(ctx, projectID)
	if err != nil {
		return err
	}
	defer func() {
		if lerr := s.Leave(); err == nil {
			err = lerr
		}
	}()

	doc, ok := info.Project.FindDoc(ref)
	if !ok {
		return errors.New("E402").WithDetailf("No document %q in project %s.", ref, info.Project.Name)
	}

	lines, err := s.GetDocumentLines(ctx, doc.ID)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, export.Join(lines))
	return err
}
