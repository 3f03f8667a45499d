package main

import (
	"context"
	"errors"
	"log"
	"os"

	"medintake-backend/azure"
	"medintake-backend/config"
	"medintake-backend/handlers"
	"medintake-backend/kb"
	"medintake-backend/repository"
	"medintake-backend/service"
	"medintake-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env from the working directory or the project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Persistence is optional; without DATABASE_URL the pipeline runs
	// stateless and the history endpoints report it.
	var db *pgxpool.Pool
	var docRepo *repository.DocumentRepository
	var extractionRepo *repository.ExtractionRepository
	if cfg.Database.URL != "" {
		db, err = initPostgres(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		defer db.Close()
		docRepo = repository.NewDocumentRepository(db)
		extractionRepo = repository.NewExtractionRepository(db)
	} else {
		log.Println("DATABASE_URL not set, running without persistence")
	}

	fileStorage, err := storage.NewStorage(storage.StorageConfig{
		Type:      storage.StorageType(cfg.Storage.Type),
		LocalPath: cfg.Storage.LocalPath,
		S3Bucket:  cfg.Storage.S3Bucket,
		S3Region:  cfg.Storage.S3Region,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("✓ Storage initialized")

	knowledge, err := kb.Load(cfg.KB.DataDir)
	if err != nil {
		log.Fatalf("Failed to load knowledge base from %s: %v", cfg.KB.DataDir, err)
	}
	stats := knowledge.Stats()
	log.Printf("✓ Knowledge base loaded: %d chunks across %d services", stats.TotalChunks, stats.TotalServices)

	var openAI *azure.OpenAIClient
	if cfg.OpenAIConfigured() {
		openAI = azure.NewOpenAIClient(azure.OpenAIConfig{
			Endpoint:            cfg.Azure.OpenAI.Endpoint,
			APIKey:              cfg.Azure.OpenAI.APIKey,
			APIVersion:          cfg.Azure.OpenAI.APIVersion,
			ChatDeployment:      cfg.Azure.OpenAI.ChatDeployment,
			EmbeddingDeployment: cfg.Azure.OpenAI.EmbeddingDeployment,
		})
		log.Println("✓ Azure OpenAI client initialized")
	} else {
		log.Println("Warning: Azure OpenAI not configured, extraction and chat answers are unavailable")
	}

	var docIntel *azure.DocIntelClient
	if cfg.DocIntelConfigured() {
		docIntel = azure.NewDocIntelClient(azure.DocIntelConfig{
			Endpoint:   cfg.Azure.DocIntel.Endpoint,
			APIKey:     cfg.Azure.DocIntel.APIKey,
			APIVersion: cfg.Azure.DocIntel.APIVersion,
		})
		log.Println("✓ Document Intelligence client initialized")
	} else {
		log.Println("Warning: Document Intelligence not configured, OCR falls back to PDF text layers")
	}

	initEmbeddings(cfg, knowledge, openAI)

	var extractionOpts []service.ExtractionServiceOption
	if docIntel != nil {
		extractionOpts = append(extractionOpts, service.ExtractionWithOCR(docIntel))
	}
	if openAI != nil {
		extractionOpts = append(extractionOpts, service.ExtractionWithLLM(openAI))
	}
	if db != nil {
		extractionOpts = append(extractionOpts,
			service.ExtractionWithStorage(fileStorage),
			service.ExtractionWithDocumentRepository(docRepo),
			service.ExtractionWithExtractionRepository(extractionRepo),
		)
	}
	extractionService := service.NewExtractionService(extractionOpts...)

	chatOpts := []service.ChatServiceOption{
		service.ChatWithKnowledgeBase(knowledge),
		service.ChatWithTopK(cfg.KB.TopK),
	}
	if openAI != nil {
		chatOpts = append(chatOpts, service.ChatWithLLM(openAI))
	}
	chatService := service.NewChatService(chatOpts...)

	extractionHandler := handlers.NewExtractionHandler(extractionService, extractionRepo)
	chatHandler := handlers.NewChatHandler(chatService, knowledge)
	documentHandler := handlers.NewDocumentHandler(docRepo, fileStorage)
	healthHandler := handlers.NewHealthHandler(knowledge, cfg.OpenAIConfigured(), cfg.DocIntelConfigured())

	r := gin.Default()

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		api.POST("/extractions", extractionHandler.ProcessForm)
		api.POST("/validations", extractionHandler.ValidateRecord)

		api.POST("/chat", chatHandler.Chat)
		api.GET("/chat/services", chatHandler.Services)
		api.GET("/chat/suggestions", chatHandler.Suggestions)
	}

	admin := api.Group("", handlers.AdminAuth(cfg.Admin.APIKeyHash))
	{
		admin.GET("/extractions", extractionHandler.ListExtractions)
		admin.GET("/extractions/:id", extractionHandler.GetExtraction)
		admin.GET("/documents/:id", documentHandler.GetDocument)
		admin.GET("/documents/:id/download", documentHandler.DownloadDocument)
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// initEmbeddings wires the vector index: a snapshot from disk when one
// matches the corpus, a fresh build otherwise. Without an embedding
// deployment retrieval stays on keyword overlap.
func initEmbeddings(cfg *config.Config, knowledge *kb.KnowledgeBase, openAI *azure.OpenAIClient) {
	if openAI == nil || !cfg.EmbeddingsConfigured() {
		log.Println("Embeddings not configured, retrieval uses keyword matching")
		return
	}

	knowledge.SetEmbedder(openAI)

	if cfg.KB.VectorsPath != "" {
		err := knowledge.LoadVectors(cfg.KB.VectorsPath)
		if err == nil {
			log.Printf("✓ Vector snapshot loaded from %s", cfg.KB.VectorsPath)
			return
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Vector snapshot unusable, rebuilding: %v", err)
		}
	}

	if err := knowledge.BuildEmbeddings(context.Background(), openAI); err != nil {
		log.Printf("Warning: Embedding build failed, retrieval uses keyword matching: %v", err)
		return
	}
	log.Println("✓ Chunk embeddings built")
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("✓ Postgres connection established")
	return pool, nil
}
