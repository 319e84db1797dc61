package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/store"
)

// backboneCmd is for the plasmid backbones circuits are carried on
var backboneCmd = &cobra.Command{
	Use:                        "backbone",
	Short:                      "List, set and delete backbones",
	SuggestionsMinimumDistance: 2,
	Long: `
A backbone is the plasmid chassis: its copy number, origin of replication and up
to five resistance markers. The built-in presets are read-only.`,
	Aliases: []string{"backbones"},
}

var backboneListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the presets and saved backbones",
	Args:    cobra.NoArgs,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		backbones, err := s.ListBackbones(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, backbones)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "id\tname\tlabel\n")
		for _, b := range backbones {
			name := b.Name
			if b.Preset {
				name += " (preset)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, name, b.Label())
		}
		return tw.Flush()
	},
}

var backboneSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace a saved backbone",
	Long: `
Save a backbone. The copy number is rounded (at least 1), the origin is trimmed
and only the first five resistances are kept before the backbone is validated.
The name defaults to the backbone's label.`,
	Args:    cobra.NoArgs,
	Aliases: []string{"add", "update"},
	Example: `  genesim backbone set --copies 20 --origin ColE1 --resistance Amp:Ampicillin --resistance Kan:Kanamycin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := parseBackbone(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		saved, err := s.SaveBackbone(cmd.Context(), store.Backbone{ID: id, Name: name, Spec: spec})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s): %s\n", saved.Name, saved.ID, saved.Label())
		return nil
	},
}

var backboneLabelCmd = &cobra.Command{
	Use:   "label",
	Short: "Print the label of a backbone without saving it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := parseBackbone(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), circuit.FormatBackboneLabel(spec))
		return nil
	},
}

var backboneDeleteCmd = &cobra.Command{
	Use:     "delete [backbone]",
	Short:   "Delete a saved backbone by id or name",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm", "remove"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		b, err := s.GetBackbone(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteBackbone(cmd.Context(), b.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", b.Name, b.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{backboneSetCmd, backboneLabelCmd} {
		c.Flags().Float64P("copies", "c", 1, "plasmid copies per cell")
		c.Flags().StringP("origin", "o", "", "origin of replication, ex: pUC")
		c.Flags().StringArrayP("resistance", "r", nil, "resistance marker as code:antibiotic, ex: Amp:Ampicillin")
	}
	backboneSetCmd.Flags().String("id", "", "id of the backbone to replace")
	backboneSetCmd.Flags().StringP("name", "n", "", "backbone name (default its label)")
	backboneListCmd.Flags().Bool("json", false, "print the list as JSON")

	backboneCmd.AddCommand(backboneListCmd)
	backboneCmd.AddCommand(backboneSetCmd)
	backboneCmd.AddCommand(backboneLabelCmd)
	backboneCmd.AddCommand(backboneDeleteCmd)

	RootCmd.AddCommand(backboneCmd)
}

// parseBackbone reads a spec from the --copies, --origin and --resistance flags
func parseBackbone(cmd *cobra.Command) (circuit.BackboneSpec, error) {
	copies, _ := cmd.Flags().GetFloat64("copies")
	origin, _ := cmd.Flags().GetString("origin")
	markers, _ := cmd.Flags().GetStringArray("resistance")

	spec := circuit.BackboneSpec{CopyNumber: copies, OriginName: origin}
	for _, m := range markers {
		code, name, found := strings.Cut(m, ":")
		if !found {
			return spec, fmt.Errorf("failed to parse resistance %q: expecting code:antibiotic", m)
		}
		spec.Resistances = append(spec.Resistances, circuit.Resistance{Code: code, Name: name})
	}
	return spec, nil
}
