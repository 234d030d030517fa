package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/shelf/internal/inventory"
)

const maxRating = 5

func newAddCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "add <isbn>...",
		Short: "Add books and fetch their metadata",
		Long: `Add one or more ISBNs to the inventory. The command waits until the
metadata lookups have finished and prints the resulting entries.

Examples:
  shelf add 0451526538
  shelf add 9780140328721 0451526538`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			session, err := open(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			inv := session.Inventory
			added := make(map[string]bool, len(args))
			invalid := 0
			for _, raw := range args {
				err := inv.Add(ctx, raw)
				switch {
				case errors.Is(err, inventory.ErrInvalidISBN):
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", raw, inventory.InvalidISBNMessage)
					invalid++
				case err != nil:
					inv.Wait()
					return err
				default:
					added[strings.TrimSpace(raw)] = true
				}
			}
			inv.Wait()

			var rows []inventory.Book
			for _, book := range inv.Books() {
				if added[book.ISBN] {
					rows = append(rows, book)
					delete(added, book.ISBN)
				}
			}
			if len(rows) > 0 {
				if err := renderTable(cmd.OutOrStdout(), rows); err != nil {
					return err
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d ISBNs were rejected", invalid, len(args))
			}
			return nil
		},
	}
}

func newRateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <isbn> <rating>",
		Short: "Set the 0-5 rating of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil || rating < 0 || rating > maxRating {
				return fmt.Errorf("rating must be an integer between 0 and %d, got %q", maxRating, args[1])
			}

			return withSession(cmd, open, func(ctx context.Context, inv Inventory) error {
				if err := inv.Rate(ctx, args[0], rating); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d/%d\n", args[0], rating, maxRating)
				return nil
			})
		},
	}
}

func newDeleteCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <isbn>",
		Aliases: []string{"rm"},
		Short:   "Remove a book with its metadata and rating",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, func(ctx context.Context, inv Inventory) error {
				if err := inv.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newListCmd(open Opener) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked books",
		Long: `List all tracked books in the order they were added.

Examples:
  shelf list                  # Table output
  shelf list --format json    # JSON output
  shelf list --format yaml    # YAML output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}

			session, err := open(commandContext(cmd))
			if err != nil {
				return err
			}
			defer session.Close()

			books := session.Inventory.Books()
			if f == formatTable && len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books tracked yet.")
				fmt.Fprintln(cmd.OutOrStdout(), "Use 'shelf add <isbn>' to add one.")
				return nil
			}
			return render(cmd.OutOrStdout(), f, books)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(formatTable), "Output format (table, json, yaml)")

	return cmd
}

func newRefreshCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch metadata for tracked books again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, func(ctx context.Context, inv Inventory) error {
				started := inv.Refresh(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Started %d metadata lookup(s)\n", started)
				return nil
			})
		},
	}
}
