package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/export"
)

// partsCmd is for the custom parts kept with a circuit
var partsCmd = &cobra.Command{
	Use:                        "parts",
	Short:                      "List or import a circuit's custom parts",
	SuggestionsMinimumDistance: 2,
	Long: `
Custom parts are user defined parts stored with a circuit so they can be placed
on its strand with 'genesim place'.`,
	Aliases: []string{"part"},
}

var partsListCmd = &cobra.Command{
	Use:     "list [circuit]",
	Short:   "List a circuit's custom parts",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "name\ttype\tlength\tdescription\n")
		for _, p := range f.CustomParts {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Kind, p.Component().Span(), p.Description)
		}
		return tw.Flush()
	},
}

var partsImportCmd = &cobra.Command{
	Use:   "import [circuit] [file]",
	Short: "Import parts from a FASTA or GenBank file into the draft",
	Long: `
Read parts from a multi-FASTA file (one part per record, "type=gene" in a header
sets the part type) or from the features of a GenBank file. The parts are added to
the circuit's custom parts and the result becomes the working draft.`,
	Args:    cobra.ExactArgs(2),
	RunE:    runPartsImport,
	Example: "  genesim parts import @draft parts.fasta --kind promoter",
}

func init() {
	partsImportCmd.Flags().StringP("kind", "k", "other", "type of FASTA parts without a type= token")
	partsImportCmd.Flags().StringP("format", "f", "", "fasta or genbank (default from the file extension)")

	partsCmd.AddCommand(partsListCmd)
	partsCmd.AddCommand(partsImportCmd)

	RootCmd.AddCommand(partsCmd)
}

func runPartsImport(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	formatName, _ := cmd.Flags().GetString("format")
	if formatName == "" {
		formatName = filepath.Ext(args[1])
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	r, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[1], err)
	}
	defer r.Close()

	var parts []circuit.CustomPart
	switch format {
	case export.FASTA:
		kindName, _ := cmd.Flags().GetString("kind")
		kind, err := circuit.ParseKind(kindName)
		if err != nil {
			return err
		}
		parts, err = export.ReadFASTAParts(r, kind)
		if err != nil {
			return err
		}
	case export.GenBank:
		parts, err = export.ReadGenBankParts(r)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to import parts from %s: %s files carry no sequences", args[1], format)
	}

	f.CustomParts = append(f.CustomParts, parts...)

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SaveDraft(cmd.Context(), f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d parts into the draft of %s\n", len(parts), f.Name)
	return nil
}
