// notechat answers questions about a user's private notes.
//
// Usage:
//
//	notechat          # same as "notechat serve"
//	notechat serve    # Start the HTTP API
//	notechat mcp      # Start the MCP server (stdio transport)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github/itish2003/notechat/config"
	"github/itish2003/notechat/controller"
	"github/itish2003/notechat/logging"
	"github/itish2003/notechat/mcptool"
	"github/itish2003/notechat/services"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = run(serveHTTP)
	case "mcp":
		err = run(serveMCP)
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Printf("notechat %s\n", mcptool.Version)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `notechat: grounded answers over your private notes

Usage:
  notechat serve    Start the HTTP API (default)
  notechat mcp      Start the MCP server on stdio
  notechat version  Print the version`)
}

// app holds everything the HTTP and MCP surfaces share.
type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	chat     services.ChatService
	importer *services.NoteImportService
	cleanup  []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	_ = a.log.Sync()
}

func run(serve func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.importer != nil {
		go a.runImporter(ctx)
	}
	return serve(ctx, a)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	gen, err := services.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	log.Infof("Using %s generation backend with model %s", cfg.LLM.Provider, cfg.LLM.Model)

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.chat = services.NewChatService(gen, store, log, cfg.Synth.StrictGrounding)

	if cfg.Import.Path != "" {
		if err := services.ConfigurePDFLicense(cfg.PDFLicenseKey); err != nil {
			log.Warnf("PDF notes will not be imported: %v", err)
		}
		a.importer = services.NewNoteImportService(store, cfg.Import.UserID,
			cfg.Import.ChunkSize, cfg.Import.ChunkOverlap, log)
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (services.NoteStore, error) {
	sc := a.cfg.Store
	switch strings.ToLower(sc.Provider) {
	case config.StoreMemory:
		a.log.Infof("Using in-memory note store")
		return services.NewMemoryNoteStore(), nil
	case config.StoreSQLite:
		store, err := services.NewSQLiteNoteStore(sc.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.cleanup = append(a.cleanup, func() {
			if err := store.Close(); err != nil {
				a.log.Warnf("Failed to close note database: %v", err)
			}
		})
		a.log.Infof("Using SQLite note store at %s", sc.SQLitePath)
		return store, nil
	case config.StoreChroma:
		embedder, err := services.NewOllamaEmbedder(sc.EmbeddingURL, sc.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		client, collection, err := services.OpenChromaCollection(ctx, sc.ChromaURL, sc.Collection)
		if err != nil {
			return nil, err
		}
		a.cleanup = append(a.cleanup, func() {
			if err := client.Close(); err != nil {
				a.log.Warnf("Failed to close chroma client: %v", err)
			}
		})
		a.log.Infof("Using Chroma note store, collection %q", sc.Collection)
		return services.NewChromaNoteStore(collection, embedder, a.log), nil
	default:
		return nil, fmt.Errorf("unknown note store %q", sc.Provider)
	}
}

func (a *app) runImporter(ctx context.Context) {
	path := a.cfg.Import.Path
	if err := a.importer.ScanAndImportDirectory(ctx, path); err != nil {
		a.log.Errorf("INDEXER: %v", err)
	}
	if !a.cfg.Import.Watch {
		return
	}
	if err := a.importer.WatchDirectory(ctx, path); err != nil {
		a.log.Errorf("WATCHER: %v", err)
	}
}

func newRouter(chat services.ChatService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+controller.UserIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "notechat",
			"version": mcptool.Version,
		})
	})

	chatController := controller.NewChatController(chat)
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatController.Chat)
		apiV1.POST("/notes", chatController.IngestNote)
		apiV1.GET("/notes", chatController.GetAllNotes)
	}
	return router
}

func serveHTTP(ctx context.Context, a *app) error {
	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           newRouter(a.chat),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("notechat server starting on http://localhost:%s", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveMCP(_ context.Context, a *app) error {
	a.log.Infof("notechat MCP server starting on stdio")
	return server.ServeStdio(mcptool.NewServer(a.chat))
}
