package main

import (
	"context"
	"log"
	"os"

	"medintake-backend/azure"
	"medintake-backend/config"
	"medintake-backend/kb"

	"github.com/joho/godotenv"
)

// Embeds every knowledge base chunk through the configured Azure OpenAI
// embedding deployment and writes the vectors as a JSON snapshot. The server
// loads the snapshot at startup instead of re-embedding the corpus.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.EmbeddingsConfigured() {
		log.Fatal("AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_EMBEDDING_DEPLOYMENT are required")
	}

	knowledge, err := kb.Load(cfg.KB.DataDir)
	if err != nil {
		log.Fatalf("Failed to load knowledge base from %s: %v", cfg.KB.DataDir, err)
	}
	stats := knowledge.Stats()
	log.Printf("✓ Knowledge base loaded: %d chunks across %d services", stats.TotalChunks, stats.TotalServices)

	client := azure.NewOpenAIClient(azure.OpenAIConfig{
		Endpoint:            cfg.Azure.OpenAI.Endpoint,
		APIKey:              cfg.Azure.OpenAI.APIKey,
		APIVersion:          cfg.Azure.OpenAI.APIVersion,
		ChatDeployment:      cfg.Azure.OpenAI.ChatDeployment,
		EmbeddingDeployment: cfg.Azure.OpenAI.EmbeddingDeployment,
	})

	log.Printf("Generating embeddings for %d chunks...", stats.TotalChunks)
	if err := knowledge.BuildEmbeddings(context.Background(), client); err != nil {
		log.Fatalf("Failed to build embeddings: %v", err)
	}
	log.Println("✓ Embeddings generated")

	path := cfg.KB.VectorsPath
	if path == "" {
		path = "./kbdata/vectors.json"
	}
	if err := knowledge.SaveVectors(path); err != nil {
		log.Fatalf("Failed to write vector snapshot: %v", err)
	}
	log.Printf("✓ Vector snapshot written to %s", path)
}
