package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/pokedex/internal/app"
	"github.com/ternarybob/pokedex/internal/common"
	"github.com/ternarybob/pokedex/internal/render"
)

var (
	renderMarkdown bool
	renderUseCache bool
)

var renderCmd = &cobra.Command{
	Use:   "render [name]",
	Short: "Render a Pokémon page to stdout",
	Long: `Fetches a Pokémon and prints its page as HTML, or Markdown with --markdown.
Without a name the configured default Pokémon is rendered. Upstream errors
exit non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderMarkdown, "markdown", false, "Print Markdown instead of HTML")
	renderCmd.Flags().BoolVar(&renderUseCache, "cache", false, "Use the configured Badger store instead of an in-memory one")
}

func runRender(cmd *cobra.Command, args []string) error {
	if !renderUseCache {
		config.Storage.Badger.InMemory = true
	}
	// Keep stdout for the page; only problems are logged
	if config.Logging.Level == "info" || config.Logging.Level == "debug" {
		config.Logging.Level = "warn"
	}

	logger = common.SetupLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	view, err := application.PageBuilder.PokemonPage(cmd.Context(), name)
	if err != nil {
		return err
	}

	if !renderMarkdown {
		return application.Renderer.Render(cmd.OutOrStdout(), view)
	}

	screen, err := application.Renderer.RenderScreen(view)
	if err != nil {
		return err
	}

	out, err := render.Markdown(screen, "")
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
