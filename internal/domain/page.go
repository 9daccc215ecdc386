package domain

import (
	"path/filepath"
	"sort"
)

// Parity tells which side of the spread a page belongs to.
type Parity int

const (
	Even Parity = iota
	Odd
)

// String returns "even" or "odd".
func (p Parity) String() string {
	if p == Odd {
		return "odd"
	}
	return "even"
}

// ParityOf returns Even for even sequence indices and Odd otherwise.
func ParityOf(index int) Parity {
	if index%2 == 0 {
		return Even
	}
	return Odd
}

// Page is a single captured image within a stage directory.
type Page struct {
	Path  string
	Index int
}

// Parity is derived from the page's position in the sorted listing.
func (p Page) Parity() Parity {
	return ParityOf(p.Index)
}

// Name returns the base file name of the page.
func (p Page) Name() string {
	return filepath.Base(p.Path)
}

// EnumeratePages sorts paths by file name and assigns sequence indices by
// position. The input slice is not modified.
func EnumeratePages(paths []string) []Page {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	pages := make([]Page, len(sorted))
	for i, p := range sorted {
		pages[i] = Page{Path: p, Index: i}
	}
	return pages
}
