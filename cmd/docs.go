package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command without children
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// child with children
const childParentPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
has_children: true
---
`

// grandchildren
const grandchildPage = `---
layout: default
title: %s
parent: %s
grand_parent: %s
nav_order: %d
---
`

// docType codes whether the command is a grandchild, child, etc
type docType int

const (
	root docType = iota
	child
	childParent
	grandchild
)

// meta is for describing the position/info for a command doc page
type meta struct {
	docType     docType
	title       string
	navOrder    int
	parent      string
	grandParent string
}

// docsCmd is for writing the Markdown command reference
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown docs for every command",
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := makeDocs(RootCmd, dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote docs to %s\n", dir)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}

// makeDocs parses the custom commands and outputs Markdown documentation files
func makeDocs(rootCmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	metas := map[string]meta{}
	collectMeta(rootCmd, 0, metas)

	rootCmd.DisableAutoGenTag = true
	rootName := rootCmd.Name()
	prepender := func(filename string) string {
		return filePrepender(metas, filename)
	}
	linker := func(filename string) string {
		return linkHandler(rootName, filename)
	}

	if err := doc.GenMarkdownTreeCustom(rootCmd, dir, prepender, linker); err != nil {
		return fmt.Errorf("failed to write docs: %w", err)
	}
	return nil
}

// collectMeta maps each command's doc page name to its place in the navigation
func collectMeta(c *cobra.Command, order int, metas map[string]meta) {
	base := strings.ReplaceAll(c.CommandPath(), " ", "_")
	m := meta{title: c.Name(), navOrder: order}

	switch depth := strings.Count(c.CommandPath(), " "); {
	case depth == 0:
		m.docType = root
	case depth == 1 && c.HasAvailableSubCommands():
		m.docType = childParent
		m.parent = c.Parent().Name()
	case depth == 1:
		m.docType = child
		m.parent = c.Parent().Name()
	default:
		m.docType = grandchild
		m.parent = c.Parent().Name()
		m.grandParent = c.Parent().Parent().Name()
	}
	metas[base] = m

	i := 0
	for _, sub := range c.Commands() {
		if !sub.IsAvailableCommand() || sub.IsAdditionalHelpTopicCommand() {
			continue
		}
		collectMeta(sub, i, metas)
		i++
	}
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(metas map[string]meta, filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m, ok := metas[base]
	if !ok {
		return ""
	}

	switch m.docType {
	case root:
		return fmt.Sprintf(rootPage, m.title, m.navOrder)
	case child:
		return fmt.Sprintf(childPage, m.title, m.parent, m.navOrder)
	case childParent:
		return fmt.Sprintf(childParentPage, m.title, m.parent, m.navOrder)
	case grandchild:
		return fmt.Sprintf(grandchildPage, m.title, m.parent, m.grandParent, m.navOrder)
	}

	return ""
}

// linkHandler returns the URL to a documentation page
func linkHandler(rootName, filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == rootName {
		return "/"
	}
	return base
}
