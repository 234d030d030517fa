// Package database owns the SQLite connection and schema.
//
// # Architecture
//
//	database/
//	├── database.go  # Connection setup and migrations
//	└── kv/          # Named serialized values (the inventory's backing store)
//
// # Usage
//
//	db, err := database.NewDatabase("./shelf.db")
//	values := kv.NewRepository(db.DB)
//	err = values.Set("ratings", `{"0306406152":4}`)
//
// Repositories take a *gorm.DB so tests can open a throwaway file and
// migrate only the entities they need.
package database
