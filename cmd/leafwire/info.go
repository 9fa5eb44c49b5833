package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/leafwire/leafwire/pkg/session"
	"github.com/spf13/cobra"
)

func infoCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <project-id>",
		Short: "Show a project and its documents",
		Long: `Join a project and print its name, your permission level and the
path and id of every document.

Examples:
  leafwire info 5f2a...
  leafwire info 5f2a... --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return runInfo(ctx, a, args[0], asJSON, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the project snapshot as JSON")

	return cmd
}

func runInfo(ctx context.Context, a *app, projectID string, asJSON bool, w io.Writer) (err error) {
	s, info, err := a.connect(ctx, projectID)
	if err != nil {
		return err
	}
	defer func() {
		if lerr := s.Leave(); err == nil {
			err = lerr
		}
	}()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	return printInfo(w, info)
}

func printInfo(w io.Writer, info *session.ProjectInfo) error {
	p := &info.Project
	fmt.Fprintf(w, "Project:     %s (%s)\n", p.Name, p.ID)
	if info.PermissionsLevel != "" {
		fmt.Fprintf(w, "Permissions: %s\n", info.PermissionsLevel)
	}
	if p.Owner != nil && p.Owner.Email != "" {
		fmt.Fprintf(w, "Owner:       %s\n", p.Owner.Email)
	}
	if p.Compiler != "" {
		fmt.Fprintf(w, "Compiler:    %s\n", p.Compiler)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tID\t")
	for _, d := range p.Docs() {
		marker := ""
		if d.ID == p.RootDocID {
			marker = "(root)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Path, d.ID, marker)
	}
	return tw.Flush()
}
