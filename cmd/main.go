package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"gadminbot/clients"
	"gadminbot/clients/directory"
	"gadminbot/clients/docstore"
	"gadminbot/clients/gemini"
	"gadminbot/clients/mailer"
	"gadminbot/config"
	"gadminbot/handlers"
	"gadminbot/middleware"
	"gadminbot/services/authz"
	"gadminbot/services/botconfig"
	"gadminbot/services/faq"
	"gadminbot/services/intent"
	"gadminbot/services/resolver"
	"gadminbot/usecases/dispatch"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize collaborator clients with a shared delegated-admin token
	tokens := clients.StaticTokenSource(cfg.GoogleConfig.AccessToken)
	directoryClient := directory.NewClient(tokens)
	generativeClient := gemini.NewClient(cfg.GeminiConfig.APIKey, cfg.GeminiConfig.Model)
	docstoreClient := docstore.NewClient(tokens, cfg.DocstoreConfig.ProjectID, cfg.DocstoreConfig.DatabaseID)
	mailClient := mailer.NewClient(tokens)

	// Start loading the prompt/FAQ snapshot in the background. Slash commands
	// are served immediately; free-text messages get a "still starting"
	// notice until loading concludes.
	configLoader := botconfig.NewLoader(docstoreClient)
	go configLoader.Load(context.Background())

	resolverService := resolver.NewResolverService(directoryClient, cfg.Domain)
	intentService := intent.NewIntentService(generativeClient, configLoader)
	faqService := faq.NewFaqService(generativeClient, configLoader, cfg.SupportEmail)
	authService := authz.NewAuthorizationService(directoryClient, cfg.SupportEmail)

	dispatchUseCase := dispatch.NewDispatchUseCase(
		directoryClient,
		mailClient,
		resolverService,
		intentService,
		faqService,
		authService,
		configLoader,
		cfg.Domain,
		cfg.SupportEmail,
		cfg.GoogleConfig.DelegatedAdminEmail,
	)
	chatHandler := handlers.NewChatWebhooksHandler(dispatchUseCase)

	router := mux.NewRouter()
	router.HandleFunc("/", chatHandler.HandleChatEvent).Methods(http.MethodPost)

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	recovery := middleware.NewRecoveryMiddleware()
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           recovery.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
