package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/susankaotw/bulau/internal/api/handlers"
	"github.com/susankaotw/bulau/internal/config"
	"github.com/susankaotw/bulau/internal/line"
	"github.com/susankaotw/bulau/internal/notion"
	"github.com/susankaotw/bulau/internal/repository"
	"github.com/susankaotw/bulau/internal/server"
	"github.com/susankaotw/bulau/internal/service"
	"github.com/susankaotw/bulau/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the bulau API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	notionClient := notion.NewClient(notion.Config{Token: cfg.NotionToken})

	knowledgeRepo := repository.NewKnowledgeRepository(notionClient, cfg.QADBID)

	var members service.MemberRegistry
	if cfg.HasMemberDB() {
		members = repository.NewMemberRepository(notionClient, cfg.MemberDBID)
	} else {
		log.Println("MEMBER_DB_ID not set: access gate runs in open mode")
	}

	var records service.AuditLog
	if cfg.HasRecordDB() {
		records = repository.NewRecordRepository(notionClient, cfg.RecordDBID)
	} else {
		log.Println("RECORD_DB_ID not set: lookup records disabled")
	}

	var transport service.ChatTransport
	if cfg.HasLine() {
		transport = line.NewClient(line.Config{ChannelToken: cfg.LineChannelToken})
	} else {
		log.Println("LINE_CHANNEL_TOKEN not set: chat replies disabled")
	}

	var copywriter *service.CopywriterService
	if cfg.HasOpenAI() {
		copywriter = service.NewCopywriterService(openai.NewClient(cfg.OpenAIAPIKey))
	} else {
		log.Println("OPENAI_API_KEY not set: copy generation disabled")
	}

	gateSvc := service.NewGateService(members, cfg.UpgradeURL)
	resolverSvc := service.NewResolverService(knowledgeRepo)

	var chatCopyGen service.CopyGenerator
	if copywriter != nil {
		chatCopyGen = copywriter
	}
	chatSvc := service.NewChatService(gateSvc, resolverSvc, records, transport, chatCopyGen)

	var copyGen handlers.CopyGenerator
	if copywriter != nil {
		copyGen = copywriter
	}

	routerCfg := server.RouterConfig{
		AnswerHandler:  handlers.NewAnswerHandler(gateSvc, resolverSvc),
		WebhookHandler: handlers.NewWebhookHandler(chatSvc, cfg.LineChannelSecret),
		CopyHandler:    handlers.NewCopyHandler(copyGen, records),
		HealthHandler:  handlers.NewHealthHandler(notionClient, cfg.NotionToken != "", cfg.QADBID, cfg.MemberDBID),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
