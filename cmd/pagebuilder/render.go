package main

import (
	"os"

	"github.com/spf13/cobra"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <draft.json>",
		Short: "Render a draft file as HTML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().String("mode", "preview", "render mode: preview or edit")
	cmd.Flags().String("renderer", "html", "output renderer: html or json")
	cmd.Flags().String("selected", "", "block id drawn as selected in edit mode")
	cmd.Flags().String("theme", "", "palette variant, e.g. dark")
	cmd.Flags().StringP("output", "o", "", "output file (stdout if empty)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	rawMode, _ := flags.GetString("mode")
	mode, err := render.ParseMode(rawMode)
	if err != nil {
		return err
	}
	d, err := readDraft(args[0])
	if err != nil {
		return err
	}

	variant, _ := flags.GetString("theme")
	palette := properties.NewPalette(properties.DefaultManifest(), variant)
	registry, err := pagebuilder.NewRegistry(pagebuilder.WithPalette(palette), pagebuilder.WithJSONIndent("  "))
	if err != nil {
		return err
	}
	name, _ := flags.GetString("renderer")
	selected, _ := flags.GetString("selected")
	out, _, err := registry.Render(cmd.Context(), name, d, render.RenderOptions{
		Mode:     mode,
		Selected: selected,
		Theme:    palette.RendererConfig("pagebuilder", variant),
	})
	if err != nil {
		return err
	}

	if path, _ := flags.GetString("output"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
		newPrinter(cmd).success("Rendered %s to %s", args[0], path)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
