package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// operonsCmd is for listing the transcriptional units of a circuit
var operonsCmd = &cobra.Command{
	Use:                        "operons [circuit]",
	Short:                      "List the operons of a circuit",
	Args:                       cobra.ExactArgs(1),
	RunE:                       runOperons,
	SuggestionsMinimumDistance: 2,
	Long: `
Group a circuit's placed parts into operons. An operon runs from a promoter to the
next terminator, or the next promoter, or the end of the strand. Inside it each RBS
is paired with the next gene to make a cistron.

The circuit is ` + circuitHelp,
	Example: "  genesim operons toggle.json",
}

// validateCmd is for checking a circuit for structural problems
var validateCmd = &cobra.Command{
	Use:                        "validate [circuit]",
	Short:                      "Check a circuit for errors and warnings",
	Args:                       cobra.ExactArgs(1),
	RunE:                       runValidate,
	SuggestionsMinimumDistance: 2,
	Long: `
Check a circuit for overlapping parts, parts past the end of the strand, operons
without a terminator or a gene, and regulators that no gene produces.
Exits non-zero if there are errors. Warnings are only logged.`,
	Aliases: []string{"check"},
}

// transcriptsCmd is for printing the solver request of a circuit
var transcriptsCmd = &cobra.Command{
	Use:                        "transcripts [circuit]",
	Short:                      "Print the simulation request built from a circuit",
	Args:                       cobra.ExactArgs(1),
	RunE:                       runTranscripts,
	SuggestionsMinimumDistance: 2,
	Long: `
Translate each complete operon (promoter, at least one RBS+gene pair and a
terminator) into a transcript and print them with the simulation params as the
JSON the solver takes. Invalid circuits are refused.`,
}

func init() {
	operonsCmd.Flags().Bool("json", false, "print the operons as JSON")
	validateCmd.Flags().Bool("json", false, "print the report as JSON")
	addParamFlags(transcriptsCmd)

	RootCmd.AddCommand(operonsCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(transcriptsCmd)
}

func runOperons(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	operons := f.Validate().Operons
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, operons)
	}

	w := cmd.OutOrStdout()
	if len(operons) == 0 {
		fmt.Fprintln(w, "no operons: no placed promoter")
		return nil
	}
	for _, op := range operons {
		writeOperon(w, op)
	}
	return nil
}

// writeOperon prints an operon as one line plus its warnings, ex:
//
//	operon-1 [0, 862) pLac -> B0034+GFP -> B0015
func writeOperon(w io.Writer, op circuit.Operon) {
	var cistrons []string
	for _, c := range op.Cistrons {
		cistrons = append(cistrons, c.RBS.Name+"+"+c.Gene.Name)
	}

	line := fmt.Sprintf("%s [%d, %d) %s", op.ID, op.StartBP, op.EndBP, op.Promoter.Name)
	if len(cistrons) > 0 {
		line += " -> " + strings.Join(cistrons, ", ")
	}
	if op.Terminated() {
		line += " -> " + op.Terminator.Name
	} else {
		line += " (no terminator)"
	}
	if !op.IsValid {
		line += " [incomplete]"
	}
	fmt.Fprintln(w, line)

	for _, warning := range op.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	report := f.Validate()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
		return report.Err()
	}

	w := cmd.OutOrStdout()
	for _, e := range report.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if report.IsValid {
		fmt.Fprintf(w, "%s is valid: %d operons, %d warnings\n", f.Name, len(report.Operons), len(report.Warnings))
	}
	return report.Err()
}

func runTranscripts(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}
	params, err := parseParams(cmd)
	if err != nil {
		return err
	}

	req, err := transcript.NewRequest(f.Validate(), params)
	if err != nil {
		return err
	}
	return printJSON(cmd, req)
}
