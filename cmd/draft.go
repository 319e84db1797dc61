package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// draftCmd is for the working draft: the autosaved circuit that edits go to
var draftCmd = &cobra.Command{
	Use:                        "draft",
	Short:                      "Show, load, save or clear the working draft",
	SuggestionsMinimumDistance: 2,
	Long: `
The working draft is the circuit 'genesim place' edits. It is autosaved after
every edit, valid or not, and is never listed with the saved circuits.
Use @draft wherever a circuit is expected.`,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Write the draft as a circuit file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, DraftKey)
		if err != nil {
			return err
		}
		return writeCircuit(cmd, f)
	},
}

var draftLoadCmd = &cobra.Command{
	Use:   "load [circuit]",
	Short: "Replace the draft with a copy of a circuit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SaveDraft(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %s into the draft\n", f.Name)
		return nil
	},
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the draft as a new circuit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadCircuit(cmd, DraftKey)
		if err != nil {
			return err
		}
		f.ID = ""
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			f.Name = name
		}
		return saveCircuit(cmd, f)
	},
}

var draftClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Discard the draft",
	Args:    cobra.NoArgs,
	Aliases: []string{"rm"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.ClearDraft(cmd.Context())
	},
}

func init() {
	draftShowCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	draftSaveCmd.Flags().StringP("name", "n", "", "name to save the circuit under")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftLoadCmd)
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftClearCmd)

	RootCmd.AddCommand(draftCmd)
}
