package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrlokans/shelf/internal/inventory"
)

// Inventory is the controller surface the commands drive.
type Inventory interface {
	Add(ctx context.Context, raw string) error
	Rate(ctx context.Context, id string, rating int) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) int
	Books() []inventory.Book
	Wait()
}

// Session is an opened inventory plus the function releasing it.
type Session struct {
	Inventory Inventory
	Close     func()
}

// Opener opens the configured inventory for one command run.
type Opener func(ctx context.Context) (*Session, error)

// ServeFunc runs the HTTP server until it is shut down.
type ServeFunc func(ctx context.Context) error

// NewRootCmd creates the shelf command tree. Without a subcommand it serves.
func NewRootCmd(version string, open Opener, serve ServeFunc) *cobra.Command {
	serveCmd := newServeCmd(serve)

	root := &cobra.Command{
		Use:     "shelf",
		Short:   "Track books by ISBN with ratings and OpenLibrary metadata",
		Version: version,
		Long: `shelf keeps a list of books identified by ISBN, fetches their title,
authors and cover from OpenLibrary and stores a 0-5 rating per book.

Run without a command to start the web interface.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serveCmd.RunE,
	}

	root.AddCommand(serveCmd)
	root.AddCommand(newAddCmd(open))
	root.AddCommand(newRateCmd(open))
	root.AddCommand(newDeleteCmd(open))
	root.AddCommand(newListCmd(open))
	root.AddCommand(newRefreshCmd(open))

	return root
}

func newServeCmd(serve ServeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(commandContext(cmd))
		},
	}
}

// withSession opens the inventory, runs fn and waits for the lookups fn
// started before closing it.
func withSession(cmd *cobra.Command, open Opener, fn func(ctx context.Context, inv Inventory) error) error {
	ctx := commandContext(cmd)
	session, err := open(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	err = fn(ctx, session.Inventory)
	session.Inventory.Wait()
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
