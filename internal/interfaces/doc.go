// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Persistence
//
//   - inventory.Store: load and save the three persisted inventory values
//     (internal/inventory/store.go). Implemented by inventorystore.Store
//     (SQLite) and inventory.MemoryStore (tests).
//
// ## External Services
//
//   - inventory.Catalog: metadata lookups and cover URLs
//     (internal/inventory/controller.go). Implemented by
//     catalog.OpenLibraryClient.
//
// ## Controller Consumers
//
//   - http.InventoryService: what the page and JSON API drive
//   - cli.Inventory: what the terminal commands drive
//   - scheduler.Refresher: periodic metadata fetch pass
//
// All three are satisfied by *inventory.Controller.
//
// # Adding a New Metadata Provider
//
// To add a new source of book metadata (e.g., Google Books):
//
//  1. Implement Catalog in internal/catalog/, returning the response keyed
//     by "ISBN:<id>" so stored details keep one shape:
//
//     type GoogleBooksClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *GoogleBooksClient) FetchMetadata(ctx context.Context, isbn string) (Response, error)
//     func (c *GoogleBooksClient) CoverImageURL(isbn string) string
//
//  2. Add a compile-time check to checks.go and select it in entrypoint.Open.
//
// # Compile-Time Interface Checks
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
