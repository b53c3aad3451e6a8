package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckgen/internal/adapters/secondary/parser"
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// apiKeyEnv supplies --api-key when the flag is not set
const apiKeyEnv = "DECKGEN_API_KEY"

// generateOptions holds the generate command flags
type generateOptions struct {
	Input    string
	Outline  string
	Template string
	Output   string
	Guidance string
	Provider string
	Model    string
	APIKey   string
}

var genOpts generateOptions

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck from text without running the server",
	Long: `Send text to the provider and write the populated template to a file.

With --outline the provider is skipped: the markdown file is split into
slides locally ("---" lines or level 1-2 headings start a slide, "Note:"
lines become speaker notes).

Example:
  deckgen generate --input notes.md --template brand.pptx --output deck.pptx
  cat notes.txt | deckgen generate --input - --template brand.pptx
  deckgen generate --outline talk.md --template brand.pptx`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVarP(&genOpts.Input, "input", "i", "", `Text or markdown to convert ("-" reads stdin)`)
	flags.StringVar(&genOpts.Outline, "outline", "", "Markdown outline to render without calling a provider")
	flags.StringVarP(&genOpts.Template, "template", "t", "", "Presentation template (.pptx or .potx)")
	flags.StringVarP(&genOpts.Output, "output", "o", "", "Output file (default from config: generated_presentation.pptx)")
	flags.StringVarP(&genOpts.Guidance, "guidance", "g", "", "Extra instructions for the provider")
	flags.StringVar(&genOpts.Provider, "provider", "", "Provider name: openai or gemini (overrides config)")
	flags.StringVar(&genOpts.Model, "model", "", "Model name (overrides config)")
	flags.StringVar(&genOpts.APIKey, "api-key", "", "Provider API key (default $"+apiKeyEnv+")")

	_ = generateCmd.MarkFlagRequired("template")
	generateCmd.MarkFlagsMutuallyExclusive("input", "outline")
	generateCmd.MarkFlagsOneRequired("input", "outline")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	flags := make(map[string]interface{})
	if genOpts.Provider != "" {
		flags["provider"] = genOpts.Provider
	}
	if genOpts.Model != "" {
		flags["model"] = genOpts.Model
	}

	cfg, err := loadConfig(ctx, cmd, flags)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	opts := genOpts
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(apiKeyEnv)
	}
	if opts.Output == "" {
		opts.Output = cfg.Generation.GetOutputFilename()
	}

	generator := newGenerationService(cfg, nil, logger)
	return generate(ctx, generator, opts, cmd.InOrStdin(), cmd.OutOrStdout())
}

// generate runs one generation and writes the deck to opts.Output
func generate(ctx context.Context, generator ports.GenerationService, opts generateOptions, stdin io.Reader, out io.Writer) error {
	if opts.Template == "" {
		return errors.New("--template is required")
	}
	if opts.Output == "" {
		opts.Output = entities.DefaultOutputFilename
	}

	template, err := os.Open(opts.Template) // #nosec G304 - user supplied template path
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}
	defer func() { _ = template.Close() }()

	var result *entities.GenerationResult
	if opts.Outline != "" {
		outline, err := readOutline(ctx, opts.Outline)
		if err != nil {
			return err
		}
		result, err = generator.Render(ctx, outline, filepath.Base(opts.Template), template)
		if err != nil {
			return err
		}
	} else {
		text, err := readInput(opts.Input, stdin)
		if err != nil {
			return err
		}
		result, err = generator.Generate(ctx, &entities.GenerationRequest{
			Text:         text,
			Guidance:     opts.Guidance,
			Provider:     opts.Provider,
			Model:        opts.Model,
			APIKey:       opts.APIKey,
			TemplateName: filepath.Base(opts.Template),
			Template:     template,
		})
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(opts.Output, result.Document, 0644); err != nil { // #nosec G306 - decks are shared documents
		return fmt.Errorf("writing %s: %w", opts.Output, err)
	}

	printReport(out, opts.Output, result)
	return nil
}

// readInput reads the text to convert from a file or stdin
func readInput(input string, stdin io.Reader) (string, error) {
	if input == "" {
		return "", errors.New("--input is required")
	}

	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input) // #nosec G304 - user supplied input path
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// readOutline parses a markdown outline file
func readOutline(ctx context.Context, path string) (*entities.Outline, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user supplied outline path
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}

	outline, err := parser.NewGoldmarkParser().Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parsing outline %s: %w", path, err)
	}
	return outline, nil
}

func printReport(out io.Writer, path string, result *entities.GenerationResult) {
	report := result.Report
	if report == nil {
		_, _ = fmt.Fprintf(out, "Wrote %s (%d bytes)\n", path, len(result.Document))
		return
	}

	_, _ = fmt.Fprintf(out, "Wrote %s: %d slide(s) using layout %q, %d template slide(s) removed\n",
		path, report.CreatedSlides, report.LayoutName, report.RemovedSlides)
	for _, warning := range report.Warnings() {
		_, _ = fmt.Fprintf(out, "  warning: %s\n", warning)
	}
}
