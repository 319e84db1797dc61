package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/export"
)

// exportCmd is for writing circuits out as sequence files
var exportCmd = &cobra.Command{
	Use:                        "export",
	Short:                      "Export a circuit's sequence and features",
	SuggestionsMinimumDistance: 2,
	Long: `
Write a circuit as FASTA, GenBank or GFF3. The sequence is the backbone's parts
then the inserted parts, each written at its position (reverse complemented on the
minus strand). Bases no part covers are N.`,
}

// exportZipCmd is for exporting every plasmid of a multi-cell circuit
var exportZipCmd = &cobra.Command{
	Use:                        "zip [circuit]",
	Short:                      "Export selected plasmids as a zip with one folder per cell",
	Args:                       cobra.ExactArgs(1),
	RunE:                       runExportZip,
	SuggestionsMinimumDistance: 2,
	Long: `
Export a circuit's plasmids to a zip archive. Each selected cell is a folder holding
one file per selected plasmid. A circuit without cells is a single folder named
after it. Names are made filesystem safe and repeats get _2, _3... suffixes.`,
	Example: "  genesim export zip toggle.json --cells A,B --format genbank -o toggle.zip",
}

func init() {
	for _, format := range []export.Format{export.FASTA, export.GenBank, export.GFF} {
		c := formatCmd(format)
		exportCmd.AddCommand(c)
	}

	exportZipCmd.Flags().StringP("out", "o", "", "output zip file")
	exportZipCmd.Flags().StringP("format", "f", string(export.GenBank), "fasta, genbank or gff")
	exportZipCmd.Flags().String("cells", "", "comma separated cell ids or names (default all)")
	exportZipCmd.Flags().String("plasmids", "", "comma separated plasmid ids or names (default all)")
	exportZipCmd.MarkFlagRequired("out")
	exportCmd.AddCommand(exportZipCmd)

	RootCmd.AddCommand(exportCmd)
}

// formatCmd makes the export subcommand of a single file format
func formatCmd(format export.Format) *cobra.Command {
	c := &cobra.Command{
		Use:                        string(format) + " [circuit]",
		Short:                      fmt.Sprintf("Export a circuit or one of its plasmids as %s", format),
		Args:                       cobra.ExactArgs(1),
		SuggestionsMinimumDistance: 2,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, format)
		},
	}

	c.Flags().StringP("out", "o", "", "output file (default stdout)")
	c.Flags().StringP("plasmid", "p", "", "id or name of the plasmid to export (default the main strand)")
	c.Flags().StringP("backbone", "b", "", "id or name of a saved backbone to export the circuit on")
	return c
}

func runExport(cmd *cobra.Command, args []string, format export.Format) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	rec, err := record(cmd, f)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	w, err := output(cmd, out)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := export.Write(w, rec, format, export.Options{Width: conf.Export.LineWidth}); err != nil {
		return fmt.Errorf("failed to export %s: %w", f.Name, err)
	}
	return w.Close()
}

// record assembles the plasmid or main strand chosen by the flags
func record(cmd *cobra.Command, f *circuit.File) (export.Record, error) {
	name, length, circular := f.Name, f.DNALength, f.Circular
	components, backbone := f.Components, f.Backbone

	if key, _ := cmd.Flags().GetString("plasmid"); key != "" {
		p, ok := f.Plasmid(key)
		if !ok {
			return export.Record{}, fmt.Errorf("failed to export %s: no plasmid %q", f.Name, key)
		}
		name, length, circular = p.Name, p.DNALength, p.Circular
		components, backbone = p.Components, p.Backbone
	}

	if key, _ := cmd.Flags().GetString("backbone"); key != "" {
		s, err := openStore()
		if err != nil {
			return export.Record{}, err
		}
		defer s.Close()

		b, err := s.GetBackbone(cmd.Context(), key)
		if err != nil {
			return export.Record{}, fmt.Errorf("failed to find backbone %s: %w", key, err)
		}
		backbone = &b.Spec
	}

	c := &circuit.Circuit{Length: length, Circular: circular, Components: components}
	return export.Assemble(name, c, backbone), nil
}

func runExportZip(cmd *cobra.Command, args []string) error {
	f, err := loadCircuit(cmd, args[0])
	if err != nil {
		return err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cells, _ := cmd.Flags().GetString("cells")
	plasmids, _ := cmd.Flags().GetString("plasmids")
	sel := export.Selection{Cells: splitList(cells), Plasmids: splitList(plasmids)}

	out, _ := cmd.Flags().GetString("out")
	w, err := output(cmd, out)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := export.WriteZip(w, f, sel, format, export.Options{Width: conf.Export.LineWidth}); err != nil {
		return fmt.Errorf("failed to export %s: %w", f.Name, err)
	}
	return w.Close()
}

// splitList splits a comma separated flag, nil for an empty one
func splitList(s string) (out []string) {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return
}
