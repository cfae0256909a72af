package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/cmdutil"
	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/pipeline"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		cf            cmdutil.ComposeFlags
		componentFlag string
		outputFlag    string
	)

	c := &cobra.Command{
		Use:   "inspect [system]",
		Short: "Show the generated configuration of components",
		Long: `Compose a system specification in memory and print the merged
configuration of one component, or of every component.

Output formats:
  yaml     the merged key/value tree (default)
  json     the same tree as JSON
  c        the generated initargs.c source
  table    one row per leaf of the tree

Examples:
  # Show the capability manager's configuration
  composer inspect system.toml -c cm

  # Print the generated C for every component
  composer inspect -o c`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runInspect(c, args, cfg, &cf, componentFlag, outputFlag)
		},
	}

	cf.AddTo(c)
	c.Flags().StringVarP(&componentFlag, "component", "c", "",
		"Component variable name (default: all components)")
	c.Flags().StringVarP(&outputFlag, "output", "o", "yaml",
		"Output format: "+strings.Join(output.ValidFormats(), ", "))

	return c
}

func runInspect(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, cf *cmdutil.ComposeFlags, component, outputFmt string) error {
	format, valid := output.ParseOutputFormat(outputFmt)
	if !valid {
		return &cmdtypes.ExitError{
			Code: cmdtypes.ExitGeneralError,
			Err:  fmt.Errorf("invalid output format %q (valid: %s)", outputFmt, strings.Join(output.ValidFormats(), ", ")),
		}
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, _, err := cmdutil.Compose(ctx, cmdutil.ComposeOpts{
		SystemPath: cmdutil.ResolveSystemPath(args),
		Flags:      *cf,
		Config:     cfg,
	})
	if err != nil {
		return err
	}

	files, err := selectFiles(result, component)
	if err != nil {
		return cmdtypes.NewExitError(err)
	}

	if err := writeInspect(c.OutOrStdout(), files, format); err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}
	return nil
}

func selectFiles(result *pipeline.Result, component string) ([]pipeline.FileResult, error) {
	if component == "" {
		return result.Files, nil
	}

	f, ok := result.Lookup(component)
	if !ok {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("component %q is not declared", component),
			"",
			"run 'composer inspect -o table' to list components",
		)
	}
	return []pipeline.FileResult{*f}, nil
}

func writeInspect(w io.Writer, files []pipeline.FileResult, format output.OutputFormat) error {
	switch format {
	case output.FormatC:
		for i, f := range files {
			if len(files) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "/* c:%s/%s */\n", f.Component.ID, f.Component.Name)
			}
			fmt.Fprint(w, f.Component.Source)
		}
		return nil

	case output.FormatTable:
		tbl := output.NewTable("COMPONENT", "KEY", "VALUE").Grouped()
		for _, f := range files {
			for _, row := range flatten("", f.Component.Tree) {
				tbl.Row(f.Component.Name, row[0], row[1])
			}
		}
		fmt.Fprintln(w, tbl.String())
		return nil

	case output.FormatJSON:
		data, err := encodeYAML(files)
		if err != nil {
			return err
		}
		data, err = sigsyaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("converting to json: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("indenting json: %w", err)
		}
		buf.WriteByte('\n')
		_, err = w.Write(buf.Bytes())
		return err

	default:
		data, err := encodeYAML(files)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// encodeYAML renders a single component as its tree, and several as a
// mapping from component name to tree.
func encodeYAML(files []pipeline.FileResult) ([]byte, error) {
	if len(files) == 1 {
		return kv.EncodeYAML(files[0].Component.Tree)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range files {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Component.Name},
			kv.ListYAMLNode(f.Component.Tree),
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten returns a [path, value] pair for every leaf and empty array.
func flatten(prefix string, nodes []kv.Node) [][2]string {
	var rows [][2]string
	for _, n := range nodes {
		path := n.Key
		if prefix != "" {
			path = prefix + "/" + n.Key
		}
		switch {
		case n.IsLeaf():
			rows = append(rows, [2]string{path, n.Value()})
		case len(n.Children()) == 0:
			rows = append(rows, [2]string{path, "[]"})
		default:
			rows = append(rows, flatten(path, n.Children())...)
		}
	}
	return rows
}
