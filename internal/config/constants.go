package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the inventory database
	DefaultDatabasePath = "./shelf.db"

	// DefaultEnvFile is loaded before reading the environment, if present
	DefaultEnvFile = ".env"
)
