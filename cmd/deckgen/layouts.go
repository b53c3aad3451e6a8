package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckgen/internal/adapters/secondary/pptx"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

var layoutsJSON bool

// layoutsCmd represents the layouts command
var layoutsCmd = &cobra.Command{
	Use:   "layouts TEMPLATE",
	Short: "List the slide layouts of a template",
	Long: `Show the layouts of a template's first slide master and their
placeholders. The layout marked with "*" is the one generated slides use:
the first layout with at least two placeholders.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
	layoutsCmd.Flags().BoolVar(&layoutsJSON, "json", false, "Print the template description as JSON")
}

func runLayouts(cmd *cobra.Command, args []string) error {
	return listLayouts(cmd.Context(), pptx.NewPopulator(nil), args[0], layoutsJSON, cmd.OutOrStdout())
}

// listLayouts prints the layouts of the template at path
func listLayouts(ctx context.Context, populator ports.DeckPopulator, path string, asJSON bool, out io.Writer) error {
	info, err := populator.Inspect(ctx, path)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	notes := "no"
	if info.HasNotesMaster {
		notes = "yes"
	}
	_, _ = fmt.Fprintf(out, "%s: %d existing slide(s), notes master: %s\n", path, info.SlideCount, notes)

	for _, layout := range info.Layouts {
		marker := " "
		if layout.Index == info.ChosenLayout {
			marker = "*"
		}
		_, _ = fmt.Fprintf(out, "%s [%d] %s\n", marker, layout.Index, layout.Name)
		if len(layout.Placeholders) > 0 {
			_, _ = fmt.Fprintf(out, "      %s\n", strings.Join(layout.Placeholders, ", "))
		}
	}
	return nil
}
