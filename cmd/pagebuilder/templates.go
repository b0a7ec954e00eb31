package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the page templates",
		Args:  cobra.NoArgs,
		RunE:  runTemplates,
	}
	cmd.Flags().String("category", "", "only list one category")
	return cmd
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	catalog, err := templates.DefaultCatalog()
	if err != nil {
		return err
	}
	list := catalog.List()
	if raw, _ := cmd.Flags().GetString("category"); raw != "" {
		list = catalog.ByCategory(templates.Category(strings.ToLower(raw)))
	}

	p := newPrinter(cmd)
	if p.json {
		type item struct {
			ID       string             `json:"id"`
			Name     string             `json:"name"`
			Category templates.Category `json:"category"`
		}
		out := make([]item, 0, len(list))
		for _, tpl := range list {
			out = append(out, item{ID: tpl.ID, Name: tpl.Name, Category: tpl.Category})
		}
		return p.writeJSON(out)
	}
	if len(list) == 0 {
		p.note("No templates.")
		return nil
	}
	var current templates.Category
	for _, tpl := range list {
		if tpl.Category != current {
			current = tpl.Category
			p.title(strings.ToUpper(string(current[:1])) + string(current[1:]))
		}
		p.row(tpl.ID, tpl.Name)
	}
	return nil
}
