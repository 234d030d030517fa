// Package catalog talks to the OpenLibrary books API.
package catalog

import "strings"

// Author is one entry of a record's author list.
type Author struct {
	Name string `json:"name"`
}

// Record is the per-book payload of an api/books response. Both fields are
// optional: the catalog omits them for sparse entries.
type Record struct {
	Title   string   `json:"title,omitempty"`
	Authors []Author `json:"authors,omitempty"`
}

// AuthorNames returns the names of the record's authors, skipping blanks.
func (r Record) AuthorNames() []string {
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Response is the body of an api/books call, keyed by bibkey ("ISBN:<id>").
// An empty Response means the catalog had nothing for the requested key.
type Response map[string]Record

// BibKey returns the response key used for an identifier.
func BibKey(isbn string) string {
	return "ISBN:" + isbn
}

// Record returns the entry for isbn, if the response carries one.
func (r Response) Record(isbn string) (Record, bool) {
	rec, ok := r[BibKey(isbn)]
	return rec, ok
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	if r == nil {
		return nil
	}
	out := make(Response, len(r))
	for k, rec := range r {
		cp := Record{Title: rec.Title}
		if rec.Authors != nil {
			cp.Authors = append([]Author(nil), rec.Authors...)
		}
		out[k] = cp
	}
	return out
}
