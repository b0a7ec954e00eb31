// Command pagebuilder serves, renders and edits page drafts.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/internal/config"
)

// Build info set via ldflags.
var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagebuilder",
		Short: "Build block-based pages and render them for editing or sharing",
		Long: `pagebuilder assembles pages out of typed blocks: a header, an ordered
body and a footer. Drafts are plain JSON files or rows in a page store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		config.LoadEnvFiles()
		return nil
	}
	cmd.PersistentFlags().String("config", "", "config file (default "+config.FileName+" in the config dir)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	lipgloss.SetHasDarkBackground(true)

	cmd.AddGroup(&cobra.Group{ID: "pages", Title: "Page Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "catalog", Title: "Catalog Commands:"})
	for _, sub := range []struct {
		cmd   *cobra.Command
		group string
	}{
		{newServeCmd(), "pages"},
		{newRenderCmd(), "pages"},
		{newNewCmd(), "pages"},
		{newEditCmd(), "pages"},
		{newTemplatesCmd(), "catalog"},
		{newSchemaCmd(), "catalog"},
	} {
		sub.cmd.GroupID = sub.group
		cmd.AddCommand(sub.cmd)
	}
	return cmd
}

func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
