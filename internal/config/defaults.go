package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kaiwa/data/db/workspaces.db"
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "/usr/local/var/kaiwa/data/indexes"
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "/usr/local/var/kaiwa/data/uploads"
	}
	if cfg.Gateway.APIKeyEnv == "" {
		cfg.Gateway.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Gateway.EmbeddingModel == "" {
		cfg.Gateway.EmbeddingModel = "text-embedding-3-large"
	}
	if cfg.Gateway.CompletionModel == "" {
		cfg.Gateway.CompletionModel = "gpt-4o-mini"
	}
	if cfg.Gateway.EmbeddingDimensions == 0 {
		cfg.Gateway.EmbeddingDimensions = 3072
	}
	if cfg.Gateway.RequestTimeoutSecs == 0 {
		cfg.Gateway.RequestTimeoutSecs = 60
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}
	if cfg.Ingest.AllowedExtensions == nil {
		cfg.Ingest.AllowedExtensions = []string{".txt", ".md", ".pdf", ".docx", ".excalidraw", ".xlsx", ".pptx"}
	}
	if cfg.Ingest.MaxUploadBytes == 0 {
		cfg.Ingest.MaxUploadBytes = 30 << 20
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 5
	}
	if cfg.Query.PreviewLength == 0 {
		cfg.Query.PreviewLength = 200
	}
}
