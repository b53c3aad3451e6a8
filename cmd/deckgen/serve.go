package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/deckgen/internal/adapters/primary/http"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/browser"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

var (
	// Serve command flags
	port        int
	host        string
	openBrowser bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web service",
	Long: `Start the HTTP service with the upload page at / and the
POST /generate endpoint. Generation progress is streamed on /ws.

Example:
  deckgen serve
  deckgen serve --port 9000 --open`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Defaults come from config; flags only override when set
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "Open the upload page in a browser once the server is up")
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	if strings.ContainsAny(config.Server.Host, " !") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

// serveFlags collects the serve flags the user set
func serveFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("port") {
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = host
	}
	if cmd.Flags().Changed("open") {
		flags["open"] = openBrowser
	}
	return flags
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, cmd, serveFlags(cmd))
	if err != nil {
		return err
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	launcher := browser.NewLauncher(cfg.Browser.Browser)
	return serve(ctx, cfg, launcher, logger, cmd.OutOrStdout())
}

// serve runs the HTTP service until ctx is cancelled
func serve(ctx context.Context, cfg *entities.Config, launcher ports.BrowserLauncher, logger *slog.Logger, out io.Writer) error {
	connMgr := httpadapter.NewConnectionManager()
	monitor := monitoring.NewGenerationMonitor(connMgr)
	monitor.Start(ctx)
	defer monitor.Stop()

	generator := newGenerationService(cfg, monitor, logger)

	server := httpadapter.NewServer(generator, connMgr, &cfg.Server, &cfg.Logging)
	server.SetVersion(Version)
	server.SetHealthReporter(monitor)

	if err := server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	url := browserURL(server.Addr())
	_, _ = fmt.Fprintf(out, "deckgen %s listening on %s\n", Version, url)
	logger.Info("Server started",
		slog.String("addr", server.Addr()),
		slog.String("provider", cfg.Provider.GetDefaultProvider()),
		slog.String("model", cfg.Provider.GetDefaultModel()))

	if cfg.Browser.AutoOpen && launcher != nil {
		if err := launcher.Launch(url, false); err != nil {
			logger.Warn("Failed to open browser", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()
	_, _ = fmt.Fprintln(out, "Shutting down server...")

	// Stop applies the configured shutdown timeout
	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// browserURL turns a listen address into a URL a browser can open
func browserURL(addr string) string {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(h); ip != nil && ip.IsUnspecified() {
		h = "localhost"
	}
	return "http://" + net.JoinHostPort(h, p)
}
