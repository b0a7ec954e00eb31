package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [draft.json]",
		Short: "Start a draft from a template",
		Long: `new instantiates a template with fresh block ids. The draft is written to
the given file, or printed when no file is named.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNew,
	}
	cmd.Flags().StringP("template", "t", "personal-brand", "template id (see 'pagebuilder templates')")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("template")
	catalog, err := templates.DefaultCatalog()
	if err != nil {
		return err
	}
	tpl, err := catalog.Get(id)
	if err != nil {
		return err
	}
	d := templates.Instantiate(tpl, document.DefaultIDGenerator)

	if len(args) == 0 {
		data, err := document.Encode(d)
		if err != nil {
			return err
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			return err
		}
		pretty.WriteByte('\n')
		_, err = cmd.OutOrStdout().Write(pretty.Bytes())
		return err
	}

	mirror := persist.NewFileMirror(args[0])
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, exists, _ := mirror.Read(); exists {
			return fmt.Errorf("pagebuilder: %s already exists (use --force)", args[0])
		}
	}
	if err := mirror.Write(d); err != nil {
		return err
	}
	p := newPrinter(cmd)
	if p.json {
		return p.writeJSON(map[string]any{"path": args[0], "template": tpl.ID, "blocks": d.IDs()})
	}
	p.success("Created %s from %s (%d blocks)", args[0], tpl.Name, len(d.IDs()))
	return nil
}
