// Command wordsearch starts the Word Search Game server.
//
// Subcommands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "generate" – prints a puzzle to the terminal
//  4. "validate" – checks puzzle definition files
//  5. "version"
//
// Flag defaults come from the environment (and a .env file), so the same
// binary can be configured either way.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/word-search-game/api"
	"github.com/wricardo/word-search-game/game/config"
	"github.com/wricardo/word-search-game/game/content"
	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/render"
	"github.com/wricardo/word-search-game/game/service"
	"github.com/wricardo/word-search-game/game/session"
	"github.com/wricardo/word-search-game/transport/mcp"
	"github.com/wricardo/word-search-game/transport/websocket"
	"github.com/wricardo/word-search-game/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Word Search Game Server"
)

// main loads the environment, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	if err := newCommand(settings).Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newCommand builds the CLI. Flag defaults are taken from settings.
func newCommand(settings *config.Settings) *cli.Command {
	return &cli.Command{
		Name:    "wordsearch",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "Directory containing puzzle definitions"},
			&cli.StringFlag{Name: "db", Value: settings.DatabasePath, Usage: "SQLite catalog for definitions (optional, imports config-dir on start)"},
			&cli.StringFlag{Name: "locale", Value: settings.Locale, Usage: "Locale for custom and generated word lists (en, es, pt)"},
			&cli.BoolFlag{Name: "debug", Value: settings.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: settings.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: settings.NgrokAuthToken, Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Value: settings.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, cmd, settings)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServe(ctx, cmd, settings)
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := initializeServices(ctx, cmd, settings)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					return runStdioMCPWithInternalServer(svc, cmd.Int("port"))
				},
			},
			{
				Name:  "generate",
				Usage: "Print a generated puzzle",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "Definition ID (default definition when empty)"},
					&cli.StringSliceFlag{Name: "words", Usage: "Custom words, overrides --config"},
					&cli.IntFlag{Name: "size", Usage: "Grid size override"},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed (random when 0)"},
					&cli.BoolFlag{Name: "reveal", Usage: "Mark the placed words"},
				},
				Action: runGenerate,
			},
			{
				Name:      "validate",
				Usage:     "Validate puzzle definition files",
				ArgsUsage: "[file.json ...]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "trials", Value: validate.DefaultTrials, Usage: "Seeded grids generated per definition"},
				},
				Action: runValidate,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// initializeServices wires the definition store, the session manager and the
// game service. It also starts a background cleanup routine that prunes
// sessions idle for longer than the configured TTL.
func initializeServices(ctx context.Context, cmd *cli.Command, settings *config.Settings) (service.GameService, error) {
	configs, err := loadConfigs(ctx, cmd)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{service.WithDefaultLocale(cmd.String("locale"))}
	if settings.GeneratorEnabled() {
		generator, err := content.NewGeminiClient(ctx, settings.GCPProjectID, settings.GCPRegion, settings.GeminiModel)
		if err != nil {
			log.Printf("Warning: word list generator disabled: %v", err)
		} else {
			log.Printf("Word list generator enabled (model %s)", generator.Model())
			opts = append(opts, service.WithGenerator(generator))
		}
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configs, opts...)

	go sessionCleanupRoutine(sessionManager, settings.SessionTTL)

	return gameService, nil
}

// loadConfigs returns the file-based definition manager, or a SQLite catalog
// seeded from it when --db is set.
func loadConfigs(ctx context.Context, cmd *cli.Command) (service.ConfigManager, error) {
	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	dbPath := cmd.String("db")
	if dbPath == "" {
		return configManager, nil
	}

	store, err := config.OpenSQLiteStore(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition catalog: %w", err)
	}
	imported, err := store.Import(ctx, configManager)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to import definitions: %w", err)
	}
	log.Printf("Definition catalog %s ready (%d imported)", dbPath, imported)
	return store, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(manager *session.Manager, ttl time.Duration) {
	interval := ttl / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(ttl)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// newHTTPHandler combines the REST API, the WebSocket endpoint and the /mcp
// proxy endpoint.
func newHTTPHandler(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(gameService, hub)

	// Create MCP client for /mcp endpoint
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command, settings *config.Settings) error {
	gameService, err := initializeServices(ctx, cmd, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	log.Printf("Starting %s v%s", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := newHTTPHandler(gameService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 70 * time.Second, // generation requests wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API on localhost:port; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, port int) error {
	externalURL := fmt.Sprintf("http://localhost:%d", port)
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runGenerate prints one puzzle from a definition or an ad-hoc word list.
func runGenerate(ctx context.Context, cmd *cli.Command) error {
	var puzzleConfig *engine.PuzzleConfig
	if words := cmd.StringSlice("words"); len(words) > 0 {
		puzzleConfig = &engine.PuzzleConfig{Name: "custom", GridSize: content.DefaultGridSize, Words: words}
	} else {
		configs, err := loadConfigs(ctx, cmd)
		if err != nil {
			return err
		}
		if id := cmd.String("config"); id != "" {
			if puzzleConfig, err = configs.LoadConfig(id); err != nil {
				return err
			}
		} else {
			puzzleConfig = configs.GetDefault()
		}
	}

	cfg := *puzzleConfig
	puzzleConfig = &cfg
	if size := cmd.Int("size"); size > 0 {
		puzzleConfig.GridSize = size
	}
	if err := engine.ValidatePuzzleConfig(puzzleConfig); err != nil {
		return err
	}

	seed := cmd.Int64("seed")
	if seed == 0 {
		seed = engine.NewSeed()
	}
	puzzle := engine.GenerateWithHints(puzzleConfig.Words, puzzleConfig.Hints, puzzleConfig.GridSize, engine.NewRand(seed))

	out := cmd.Root().Writer
	renderer := render.New(false)
	if f, ok := out.(*os.File); ok {
		renderer = render.ForFile(f)
	}

	fmt.Fprintf(out, "%s (seed %d)\n\n", puzzleConfig.Name, seed)
	fmt.Fprint(out, renderer.Puzzle(puzzle, cmd.Bool("reveal")))
	for _, w := range puzzle.Dropped {
		fmt.Fprintf(out, "Warning: %s could not be placed\n", w)
	}
	return nil
}

// runValidate checks the given files, or every definition in --config-dir.
func runValidate(ctx context.Context, cmd *cli.Command) error {
	trials := cmd.Int("trials")

	var results []validate.Result
	if cmd.Args().Len() > 0 {
		for _, path := range cmd.Args().Slice() {
			results = append(results, validate.File(path, trials))
		}
	} else {
		var err error
		results, err = validate.Dir(cmd.String("config-dir"), trials)
		if err != nil {
			return err
		}
	}

	if len(results) == 0 {
		return errors.New("no definition files found")
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return errors.New("some definitions have errors")
	}
	return nil
}
