package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// circuitCmd is for managing saved circuits
var circuitCmd = &cobra.Command{
	Use:                        "circuit",
	Short:                      "Create, save, list and delete circuits",
	SuggestionsMinimumDistance: 2,
	Long: `
Manage the circuits saved in the local database. Saved circuits can be passed
by id or name to any command that takes a circuit.`,
	Aliases: []string{"circuits"},
}

var circuitNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Write an empty circuit file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		length, _ := cmd.Flags().GetInt("length")
		if length <= 0 {
			return fmt.Errorf("failed to create %s: length must be positive", args[0])
		}

		f := circuit.NewFile(args[0], length, time.Now())
		f.Circular, _ = cmd.Flags().GetBool("circular")
		return writeCircuit(cmd, f)
	},
}

var circuitSaveCmd = &cobra.Command{
	Use:   "save [circuit]",
	Short: "Save a circuit to the database",
	Long: `
Save a circuit to the database, replacing the saved circuit with the same id.
Circuits with validation errors are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, args[0])
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			f.Name = name
		}
		return saveCircuit(cmd, f)
	},
}

var circuitImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a circuit file as a new saved circuit",
	Long: `
Import a circuit file into the database. The circuit gets a new id and timestamps,
so importing the same file twice makes two circuits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer r.Close()

		f, err := circuit.Import(r, time.Now())
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", args[0], err)
		}
		return saveCircuit(cmd, f)
	},
}

var circuitListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved circuits, most recently updated first",
	Args:    cobra.NoArgs,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		circuits, err := s.ListCircuits(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, circuits)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "id\tname\tlength\tparts\tupdated\n")
		for _, c := range circuits {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.ID, c.Name, c.DNALength, c.Components, c.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	},
}

var circuitExportCmd = &cobra.Command{
	Use:     "export [circuit]",
	Short:   "Write a circuit as a circuit file",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"get", "show"},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, args[0])
		if err != nil {
			return err
		}
		return writeCircuit(cmd, f)
	},
}

var circuitDeleteCmd = &cobra.Command{
	Use:     "delete [circuit]",
	Short:   "Delete a saved circuit by id or name",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm", "remove"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		f, err := s.GetCircuit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteCircuit(cmd.Context(), f.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", f.Name, f.ID)
		return nil
	},
}

func init() {
	circuitNewCmd.Flags().IntP("length", "l", 5000, "strand length in bp")
	circuitNewCmd.Flags().BoolP("circular", "c", false, "the strand is circular")
	circuitNewCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	circuitSaveCmd.Flags().StringP("name", "n", "", "save under a new name")
	circuitListCmd.Flags().Bool("json", false, "print the list as JSON")
	circuitExportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	circuitCmd.AddCommand(circuitNewCmd)
	circuitCmd.AddCommand(circuitSaveCmd)
	circuitCmd.AddCommand(circuitImportCmd)
	circuitCmd.AddCommand(circuitListCmd)
	circuitCmd.AddCommand(circuitExportCmd)
	circuitCmd.AddCommand(circuitDeleteCmd)

	RootCmd.AddCommand(circuitCmd)
}

func saveCircuit(cmd *cobra.Command, f *circuit.File) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.SaveCircuit(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", saved.Name, saved.ID)
	return nil
}

// writeCircuit encodes the file to --out or stdout
func writeCircuit(cmd *cobra.Command, f *circuit.File) error {
	out, _ := cmd.Flags().GetString("out")
	w, err := output(cmd, out)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := f.Encode(w); err != nil {
		return err
	}
	return w.Close()
}
