package inventory

import "strings"

const (
	TitleNotAvailable  = "Title not available"
	AuthorNotAvailable = "Author not available"
)

// Book is the render-ready row for one tracked identifier.
type Book struct {
	ISBN     string     `json:"isbn" yaml:"isbn"`
	Title    string     `json:"title" yaml:"title"`
	Authors  string     `json:"authors" yaml:"authors"`
	Loaded   bool       `json:"loaded" yaml:"loaded"`
	Found    bool       `json:"found" yaml:"found"`
	Rating   int        `json:"rating" yaml:"rating"`
	CoverURL string     `json:"cover_url" yaml:"cover_url"`
	State    FetchState `json:"state,omitempty" yaml:"state,omitempty"`
}

// Books returns one row per list entry, in list order.
func (c *Controller) Books() []Book {
	snap := c.Snapshot()
	return BuildBooks(snap, c.catalog.CoverImageURL)
}

// BuildBooks turns a snapshot into rows. coverURL derives the image URL.
func BuildBooks(snap Snapshot, coverURL func(string) string) []Book {
	inv := snap.Inventory
	books := make([]Book, 0, len(inv.ISBNs))

	for _, id := range inv.ISBNs {
		rec, loaded, found := inv.Record(id)

		book := Book{
			ISBN:    id,
			Title:   TitleNotAvailable,
			Authors: AuthorNotAvailable,
			Loaded:  loaded,
			Found:   found,
			Rating:  inv.Ratings[id],
			State:   snap.States[id],
		}
		if coverURL != nil {
			book.CoverURL = coverURL(id)
		}
		if rec.Title != "" {
			book.Title = rec.Title
		}
		if names := rec.AuthorNames(); len(names) > 0 {
			book.Authors = strings.Join(names, ", ")
		}

		books = append(books, book)
	}

	return books
}
