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
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/fragments.db"
	}
	if cfg.Mistral.BaseURL == "" {
		cfg.Mistral.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Mistral.EmbeddingModel == "" {
		cfg.Mistral.EmbeddingModel = "mistral-embed"
	}
	if cfg.Mistral.ChatModel == "" {
		cfg.Mistral.ChatModel = "mistral-small-latest"
	}
	if cfg.Mistral.Temperature == 0 {
		cfg.Mistral.Temperature = 0.2
	}
	if cfg.Mistral.EmbedBatchSize == 0 {
		cfg.Mistral.EmbedBatchSize = 32
	}
	if cfg.Mistral.MockDimensions == 0 {
		cfg.Mistral.MockDimensions = 64
	}
	if cfg.Retrieval.K1 == 0 {
		cfg.Retrieval.K1 = 1.5
	}
	if cfg.Retrieval.B == 0 {
		cfg.Retrieval.B = 0.75
	}
	if cfg.Retrieval.CandidateLimit == 0 {
		cfg.Retrieval.CandidateLimit = 20
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinEvidenceScore == 0 {
		cfg.Retrieval.MinEvidenceScore = 0.6
	}
	if cfg.Chunking.MaxChars == 0 {
		cfg.Chunking.MaxChars = 400
	}
	if cfg.Chunking.OverlapChars == 0 {
		cfg.Chunking.OverlapChars = 50
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
