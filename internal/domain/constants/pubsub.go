package constants

// Pub/Sub providers selectable through pubsub.provider.
const (
	PubSubProviderNone    = "none"
	PubSubProviderLocal   = "local"
	PubSubProviderGoogle  = "google"
	PubSubProviderGoCloud = "gocloud"
)

// Storage drivers selectable through storage.driver.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// AuthCookieName is the session cookie consulted when no bearer header is present.
const AuthCookieName = "auth-token"
