package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <block-type>",
		Short:     "Show the editable properties of a block type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: document.Types(),
		RunE:      runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	blockType := args[0]
	if !document.KnownType(blockType) {
		return fmt.Errorf("pagebuilder: unknown block type %q (known: %s)", blockType, strings.Join(document.Types(), ", "))
	}
	catalog := properties.New().Catalog()
	groups := catalog.Groups(blockType)

	p := newPrinter(cmd)
	if p.json {
		return p.writeJSON(map[string]any{
			"type":     blockType,
			"defaults": catalog.Defaults(blockType),
			"groups":   groups,
		})
	}
	for _, group := range groups {
		p.title(group.Name)
		for _, control := range group.Controls {
			detail := string(control.Type)
			if len(control.Options) > 0 {
				values := make([]string, len(control.Options))
				for i, opt := range control.Options {
					values[i] = opt.Value
				}
				detail += " [" + strings.Join(values, "|") + "]"
			}
			if control.ShowIf != "" {
				detail += p.styles.muted.Render("  if " + control.ShowIf)
			}
			p.row(control.Key, control.Label+"  "+detail)
		}
	}
	return nil
}
