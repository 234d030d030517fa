package interfaces

// Compile-time interface implementation checks.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/shelf/internal/catalog"
	"github.com/mrlokans/shelf/internal/cli"
	"github.com/mrlokans/shelf/internal/database"
	"github.com/mrlokans/shelf/internal/http"
	"github.com/mrlokans/shelf/internal/inventory"
	"github.com/mrlokans/shelf/internal/inventorystore"
	"github.com/mrlokans/shelf/internal/scheduler"
)

// =============================================================================
// Persistence
// =============================================================================

var _ inventory.Store = (*inventorystore.Store)(nil)
var _ inventory.Store = (*inventory.MemoryStore)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ inventory.Catalog = (*catalog.OpenLibraryClient)(nil)

// =============================================================================
// Controller consumers
// =============================================================================

var _ http.InventoryService = (*inventory.Controller)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ cli.Inventory = (*inventory.Controller)(nil)
var _ scheduler.Refresher = (*inventory.Controller)(nil)
