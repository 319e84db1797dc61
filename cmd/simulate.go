package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/HarrisKClark/Genesim-sub001/internal/chart"
	"github.com/HarrisKClark/Genesim-sub001/internal/solver"
	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// simulateCmd is for running a circuit through the solver
var simulateCmd = &cobra.Command{
	Use:                        "simulate [circuit]",
	Short:                      "Simulate a circuit's expression with the solver",
	Args:                       cobra.ExactArgs(1),
	RunE:                       runSimulate,
	SuggestionsMinimumDistance: 2,
	Long: `
Build transcripts from the circuit's complete operons and stream them to the
solver. The proxy is tried first, then the configured host and port, then the
local defaults. Progress is shown while the solver streams it.

Prints the final mRNA and protein levels of each transcript, or the mean protein
level per cell for flow simulations. --out saves the full result as JSON and
--plot renders the protein trajectories (or flow histograms) to a PNG.`,
	Aliases: []string{"sim", "run"},
	Example: "  genesim simulate toggle.json --method stochastic --runs 500 --plot toggle.png",
}

func init() {
	addParamFlags(simulateCmd)
	simulateCmd.Flags().StringP("out", "o", "", "file to write the full result to <JSON>")
	simulateCmd.Flags().StringP("plot", "p", "", "file to render the result to <PNG>")
	simulateCmd.Flags().BoolP("quiet", "q", false, "hide the progress bar")

	RootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
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

	client := newClient()
	logger.Debug("simulating", "circuit", f.Name, "transcripts", len(req.Transcripts), "method", params.Method)

	var onProgress solver.ProgressFunc
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		bar := pb.New(100)
		bar.Output = cmd.ErrOrStderr()
		bar.ShowSpeed = false
		bar.ShowCounters = false
		bar.SetMaxWidth(80)
		bar.Start()
		defer bar.Finish()

		onProgress = func(v float64) {
			bar.Set(int(math.Round(100 * math.Min(math.Max(v, 0), 1))))
		}
	}

	result, err := client.Simulate(cmd.Context(), req, onProgress)
	if err != nil {
		return fmt.Errorf("failed to simulate %s: %w", f.Name, err)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeResult(cmd, out, result); err != nil {
			return err
		}
	}
	if png, _ := cmd.Flags().GetString("plot"); png != "" {
		if err := chart.SavePNG(png, result, f.Name); err != nil {
			return fmt.Errorf("failed to plot %s: %w", f.Name, err)
		}
	}

	return writeSummary(cmd, result)
}

func newClient() *solver.Client {
	return solver.New(solver.Config{
		Proxy:   conf.Solver.Proxy,
		Host:    conf.Solver.Host,
		Port:    conf.Solver.Port,
		Timeout: conf.Solver.Timeout,
		Logger:  logger,
	})
}

func writeResult(cmd *cobra.Command, path string, result *solver.Result) error {
	w, err := output(cmd, path)
	if err != nil {
		return err
	}
	defer w.Close()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	return w.Close()
}

// writeSummary prints a table of final levels
func writeSummary(cmd *cobra.Command, result *solver.Result) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	if result.Flow() {
		fmt.Fprintf(tw, "protein\tcells\tmean\n")
		for _, p := range result.FlowCytometry.Proteins {
			fmt.Fprintf(tw, "%s\t%d\t%.3f\n", p.Label, len(p.Values), mean(p.Values))
		}
		return tw.Flush()
	}

	fmt.Fprintf(tw, "transcript\tpromoter\tmRNA\tproteins\n")
	for _, t := range result.Transcripts {
		var proteins []string
		for _, p := range t.Proteins {
			proteins = append(proteins, fmt.Sprintf("%s=%.3f", p.Label, p.Last()))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\n", t.ID, t.PromoterName, t.MRNA.Last(), strings.Join(proteins, " "))
	}
	return tw.Flush()
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
