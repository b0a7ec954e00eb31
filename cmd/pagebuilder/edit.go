package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/canvas"
	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties/prompt"
)

// newDriver is swapped in tests.
var newDriver = func(*cobra.Command) prompt.Driver {
	return prompt.NewSurveyDriver()
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [draft.json]",
		Short: "Edit the properties of one block interactively",
		Long: `edit walks the property panel of a block in the terminal. Without --slug the
draft file is rewritten in place; with --slug the page is loaded from and
saved to the configured store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEdit,
	}
	cmd.Flags().StringP("block", "b", "", "block id (prompted when empty)")
	cmd.Flags().String("slug", "", "edit a stored page instead of a file")
	cmd.Flags().String("owner", "", "owner token used when saving to the store")
	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	slug, _ := cmd.Flags().GetString("slug")
	if (slug == "") == (len(args) == 0) {
		return errors.New("pagebuilder: name either a draft file or --slug")
	}

	var c *canvas.Controller
	if slug != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := logging.New().FromBuffer(cmd.ErrOrStderr()).WithLevel(cfg.Log.Level).Make()
		if err != nil {
			return err
		}
		defer log.Close()
		store, closeStore, err := openStore(ctx, cfg.Store, log.Logger)
		if err != nil {
			return err
		}
		defer closeStore()
		owner, _ := cmd.Flags().GetString("owner")
		c, err = canvas.Open(ctx, newService(store, cfg.Store, log.Logger), persist.PageKey{Owner: owner, Slug: slug}, canvas.WithLogger(log.Logger))
		if err != nil {
			return err
		}
	} else {
		d, err := readDraft(args[0])
		if err != nil {
			return err
		}
		key := persist.PageKey{Slug: strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))}
		c = canvas.New(key, d, canvas.WithMirror(persist.NewFileMirror(args[0])))
	}

	driver := newDriver(cmd)
	id, _ := cmd.Flags().GetString("block")
	if id == "" {
		picked, err := pickBlock(cmd, driver, c.Draft())
		if err != nil {
			return err
		}
		id = picked
	}

	result, err := prompt.New(c.Engine(), prompt.WithDriver(driver)).Edit(ctx, c.Draft(), id)
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	if len(result.Patches) == 0 {
		p.note("No changes.")
		return nil
	}
	if err := c.ApplyPatches(ctx, id, result.Patches...); err != nil {
		return err
	}
	if err := c.Flush(ctx); err != nil {
		return err
	}
	p.success("Updated %d properties of %s", len(result.Patches), id)
	return nil
}

func pickBlock(cmd *cobra.Command, driver prompt.Driver, d document.Draft) (string, error) {
	ids := d.IDs()
	if len(ids) == 0 {
		return "", errors.New("pagebuilder: the draft has no blocks")
	}
	options := make([]string, len(ids))
	for i, id := range ids {
		block, _ := d.Find(id)
		options[i] = fmt.Sprintf("%s (%s, %s)", block.Label, block.Type, id)
	}
	idx, err := driver.Select(cmd.Context(), prompt.SelectConfig{Message: "Block", Options: options})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(ids) {
		return "", prompt.ErrAborted
	}
	return ids[idx], nil
}
