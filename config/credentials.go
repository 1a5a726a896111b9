package config

import "os"

// Credentials holds every API key the providers may need. It is read
// from the environment exactly once at process start and passed by
// reference; no component reads the environment directly.
type Credentials struct {
	GroqKey        string
	OpenAIKey      string
	ReplicateToken string
}

// CredentialsFromEnv snapshots the provider credentials. Presence or
// absence of a key is the sole signal the fallback resolver uses to
// decide provider availability.
func CredentialsFromEnv() *Credentials {
	return &Credentials{
		GroqKey:        os.Getenv("GROQ_API_KEY"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ReplicateToken: os.Getenv("REPLICATE_API_TOKEN"),
	}
}
