// Command shanghai-tycoon starts the Shanghai Tycoon game server.
//
// It supports two commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
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
	"github.com/wricardo/shanghai-tycoon/api"
	"github.com/wricardo/shanghai-tycoon/game/config"
	"github.com/wricardo/shanghai-tycoon/game/content"
	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
	"github.com/wricardo/shanghai-tycoon/game/session"
	"github.com/wricardo/shanghai-tycoon/transport/mcp"
	"github.com/wricardo/shanghai-tycoon/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Shanghai Tycoon Server"
)

// Session store kinds
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// settings is the resolved process configuration
type settings struct {
	Host           string
	Port           int
	ConfigDir      string
	StaticDir      string
	SessionStore   string
	SessionsDir    string
	SQLitePath     string
	SessionTTL     time.Duration
	SeatSecret     string
	SeatTTL        time.Duration
	GeminiAPIKey   string
	GeminiModel    string
	ContentTimeout time.Duration
	Debug          bool
	Ngrok          bool
	NgrokAuth      string
	NgrokDomain    string
}

func (s settings) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
		&cli.StringFlag{Name: "static-dir", Usage: "Serve a web client from this directory", Sources: cli.EnvVars("STATIC_DIR")},
		&cli.StringFlag{Name: "session-store", Value: StoreFile, Usage: "Session store: memory, file or sqlite", Sources: cli.EnvVars("SESSION_STORE")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for the file session store", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "sqlite-path", Value: "sessions.db", Usage: "Database file for the sqlite session store", Sources: cli.EnvVars("SQLITE_PATH")},
		&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Drop sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
		&cli.StringFlag{Name: "seat-secret", Usage: "HMAC secret for seat tokens; empty disables seat checks", Sources: cli.EnvVars("SEAT_SECRET")},
		&cli.DurationFlag{Name: "seat-ttl", Value: 7 * 24 * time.Hour, Usage: "Seat token lifetime", Sources: cli.EnvVars("SEAT_TTL")},
		&cli.StringFlag{Name: "gemini-api-key", Usage: "Gemini API key for generated events; empty uses built-in events", Sources: cli.EnvVars("GEMINI_API_KEY")},
		&cli.StringFlag{Name: "gemini-model", Value: content.DefaultModel, Usage: "Gemini model", Sources: cli.EnvVars("GEMINI_MODEL")},
		&cli.DurationFlag{Name: "content-timeout", Value: content.DefaultTimeout, Usage: "Deadline for one content request", Sources: cli.EnvVars("CONTENT_TIMEOUT")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		Host:           cmd.String("host"),
		Port:           int(cmd.Int("port")),
		ConfigDir:      cmd.String("config-dir"),
		StaticDir:      cmd.String("static-dir"),
		SessionStore:   cmd.String("session-store"),
		SessionsDir:    cmd.String("sessions-dir"),
		SQLitePath:     cmd.String("sqlite-path"),
		SessionTTL:     cmd.Duration("session-ttl"),
		SeatSecret:     cmd.String("seat-secret"),
		SeatTTL:        cmd.Duration("seat-ttl"),
		GeminiAPIKey:   cmd.String("gemini-api-key"),
		GeminiModel:    cmd.String("gemini-model"),
		ContentTimeout: cmd.Duration("content-timeout"),
		Debug:          cmd.Bool("debug"),
		Ngrok:          cmd.Bool("ngrok"),
		NgrokAuth:      cmd.String("ngrok-auth"),
		NgrokDomain:    cmd.String("ngrok-domain"),
	}
}

// newCommand builds the CLI
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "shanghai-tycoon",
		Usage:   AppName,
		Version: Version,
		Flags:   flags(),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runMCP,
			},
		},
	}
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// newLogger installs a text handler on w; debug lowers the level and adds sources
func newLogger(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// services holds everything initializeServices wires together
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	close       func() error
}

// openPersistence picks the session store named in s
func openPersistence(s settings, configs service.ConfigManager, engineOpts []engine.Option) (session.SessionPersistence, func() error, error) {
	noop := func() error { return nil }
	switch s.SessionStore {
	case StoreMemory, "":
		return nil, noop, nil
	case StoreFile:
		p, err := session.NewFilePersistence(s.SessionsDir, configs, engineOpts...)
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	case StoreSQLite:
		p, err := session.NewSQLitePersistence(s.SQLitePath, configs, engineOpts...)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q (use memory, file or sqlite)", s.SessionStore)
}

// initializeServices wires config, content, session managers and the game service
func initializeServices(s settings, logger *slog.Logger) (*services, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	provider := content.New(content.GeminiConfig{
		APIKey:  s.GeminiAPIKey,
		Model:   s.GeminiModel,
		Timeout: s.ContentTimeout,
	}, logger)
	engineOpts := []engine.Option{
		engine.WithContentProvider(provider),
		engine.WithContentTimeout(s.ContentTimeout),
		engine.WithLogger(logger),
	}

	persistence, closer, err := openPersistence(s, configManager, engineOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	opts := []session.ManagerOption{
		session.WithEngineOptions(engineOpts...),
		session.WithLogger(logger),
	}
	if persistence != nil {
		opts = append(opts, session.WithPersistence(persistence))
	}
	sessionManager := session.NewManager(opts...)

	if persistence != nil {
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", "error", err)
		}
	}

	logger.Info("services ready", "config_dir", s.ConfigDir, "store", s.SessionStore, "sessions", sessionManager.Count())
	return &services{
		game:        service.NewGameService(sessionManager, configManager, logger),
		sessions:    sessionManager,
		persistence: persistence,
		close:       closer,
	}, nil
}

// startBackground runs the session upkeep routines until ctx is done
func (svc *services) startBackground(ctx context.Context, s settings, logger *slog.Logger) {
	go sessionCleanupRoutine(ctx, svc.sessions, s.SessionTTL, time.Hour, logger)
	if _, ok := svc.persistence.(*session.FilePersistence); ok {
		go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence, 5*time.Second, logger)
	}
}

// shutdown saves every live session and closes the store
func (svc *services) shutdown(logger *slog.Logger) {
	if svc.persistence != nil {
		if err := svc.sessions.SaveAllSessions(); err != nil {
			logger.Error("failed to save sessions", "error", err)
		}
	}
	if err := svc.close(); err != nil {
		logger.Error("failed to close session store", "error", err)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory when their files are deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := pruneOrphans(manager, persistence, logger); n > 0 {
				logger.Info("filesystem sync pruned orphaned sessions", "pruned", n)
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory", "session", sess.ID)
		}
	}
	return pruned
}

// newAPIServer builds the API handler with the optional seat issuer
func newAPIServer(s settings, game service.GameService, hub *websocket.Hub, logger *slog.Logger) (*api.Server, error) {
	opts := []api.Option{api.WithLogger(logger)}
	if s.StaticDir != "" {
		opts = append(opts, api.WithStaticDir(s.StaticDir))
	}
	if s.SeatSecret != "" {
		issuer, err := api.NewSeatIssuer(s.SeatSecret, s.SeatTTL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithSeatIssuer(issuer))
	}
	return api.NewServer(game, hub, opts...), nil
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(cmd)
	logger := newLogger(os.Stderr, s.Debug)
	slog.SetDefault(logger)
	logger.Info("starting", "app", AppName, "version", Version, "mode", "serve")

	svc, err := initializeServices(s, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.shutdown(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.startBackground(ctx, s, logger)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	apiServer, err := newAPIServer(s, svc.game, hub, logger)
	if err != nil {
		return err
	}

	addr := s.addr()
	mainRouter := newRouter(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"ws", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s, mainRouter, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, s settings, handler http.Handler, logger *slog.Logger) {
	if s.NgrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuth))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established", "url", ngrokURL, "api", ngrokURL+"/api", "mcp", ngrokURL+"/mcp")

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPI reports whether a game server already answers at baseURL
func externalAPI(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runMCP runs an MCP stdio server. It reuses an API already listening on the
// configured address, or starts an internal one on a random loopback port.
// Logs go to stderr since stdout carries the protocol.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(cmd)
	logger := newLogger(os.Stderr, s.Debug)
	slog.SetDefault(logger)

	baseURL := "http://" + s.addr()
	if externalAPI(ctx, baseURL) {
		logger.Info("using external API server for MCP", "url", baseURL)
	} else {
		svc, err := initializeServices(s, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.shutdown(logger)

		ctx, stop := context.WithCancel(ctx)
		defer stop()
		svc.startBackground(ctx, s, logger)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		apiServer, err := newAPIServer(s, svc.game, hub, logger)
		if err != nil {
			return err
		}
		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("started internal HTTP server for MCP", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
