package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/store"
)

// placeCmd is for moving parts on the draft's strand
var placeCmd = &cobra.Command{
	Use:                        "place [circuit] [part@position] ... [partN@positionN]",
	Short:                      "Place parts on a circuit's strand and autosave the draft",
	Args:                       cobra.MinimumNArgs(2),
	RunE:                       runPlace,
	SuggestionsMinimumDistance: 2,
	Long: `
Place parts at 0-based bp positions. A part is the name of a part already in the
circuit, or of one of its custom parts (which adds a new copy), or with --kind a
new part of --length bp. A position of "-" takes the part off the strand.

Placements that leave the strand or overlap another part are refused. The edited
circuit becomes the working draft, saved once the edits are done. A refused edit
stops the run; the edits before it are kept in the draft.

Only the main strand is edited. Circuits that keep their parts in plasmids are
refused.`,
	Example: `  genesim place toggle.json pLac@0 B0034@50 GFP@62
  genesim place @draft GFP@-`,
}

func init() {
	placeCmd.Flags().StringP("kind", "k", "", "type of new parts: promoter, rbs, gene, terminator, operator or other")
	placeCmd.Flags().IntP("length", "l", 0, "length of new parts in bp")
	placeCmd.Flags().Bool("reverse", false, "place new parts on the minus strand")

	RootCmd.AddCommand(placeCmd)
}

// placement is one part@position argument, position -1 to unplace
type placement struct {
	part     string
	position int
}

func parsePlacement(arg string) (placement, error) {
	i := strings.LastIndex(arg, "@")
	if i <= 0 || i == len(arg)-1 {
		return placement{}, fmt.Errorf("failed to parse %q: expecting part@position", arg)
	}

	p := placement{part: arg[:i], position: -1}
	if pos := arg[i+1:]; pos != "-" {
		n, err := strconv.Atoi(pos)
		if err != nil || n < 0 {
			return placement{}, fmt.Errorf("failed to parse %q: position must be a bp index or -", arg)
		}
		p.position = n
	}
	return p, nil
}

func runPlace(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	if len(f.Plasmids) > 0 {
		return fmt.Errorf("failed to place parts on %s: its parts are in %d plasmids, not on the main strand", f.Name, len(f.Plasmids))
	}

	var edits []placement
	for _, arg := range args[1:] {
		p, err := parsePlacement(arg)
		if err != nil {
			return err
		}
		edits = append(edits, p)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	saver := store.NewAutosaver(s, conf.Autosave.Quiet, conf.Autosave.MinInterval, logger)
	defer saver.Close()

	for _, edit := range edits {
		if err := apply(cmd, f, edit); err != nil {
			if ferr := saver.Flush(cmd.Context()); ferr != nil {
				logger.Error("failed to save the edits before the failed one", "error", ferr)
			}
			return err
		}
		saver.Schedule(f)
	}
	if err := saver.Flush(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save the draft: %w", err)
	}

	report := f.Validate()
	fmt.Fprintf(cmd.OutOrStdout(), "draft %s: %d parts, %d operons, %d errors, %d warnings\n",
		f.Name, len(f.Components), len(report.Operons), len(report.Errors), len(report.Warnings))
	return nil
}

// apply makes one edit to the file's main strand
func apply(cmd *cobra.Command, f *circuit.File, edit placement) error {
	c := f.Circuit()

	if i := c.Index(edit.part); i >= 0 {
		if edit.position < 0 {
			c.Unplace(i)
			return nil
		}
		return c.Move(i, edit.position)
	}
	if edit.position < 0 {
		return fmt.Errorf("failed to unplace %s: no such part", edit.part)
	}

	comp, err := newPart(cmd, f, edit.part)
	if err != nil {
		return err
	}
	if err := c.CanPlace(comp, edit.position, -1); err != nil {
		return err
	}
	f.Components = append(f.Components, comp.At(edit.position))
	return nil
}

// newPart makes a part from a custom part of the circuit, or from the flags
func newPart(cmd *cobra.Command, f *circuit.File, name string) (circuit.Component, error) {
	for _, custom := range f.CustomParts {
		if custom.Name == name || custom.ID == name {
			return custom.Component(), nil
		}
	}

	kindName, _ := cmd.Flags().GetString("kind")
	if kindName == "" {
		return circuit.Component{}, fmt.Errorf("failed to place %s: not a part or custom part of %s, pass --kind to add it", name, f.Name)
	}
	kind, err := circuit.ParseKind(kindName)
	if err != nil {
		return circuit.Component{}, err
	}
	length, _ := cmd.Flags().GetInt("length")
	if length <= 0 {
		return circuit.Component{}, fmt.Errorf("failed to place %s: --length must be positive", name)
	}

	comp := circuit.Component{Kind: kind, Name: name, Length: length}
	if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
		comp.Strand = -1
	}
	return comp, nil
}
