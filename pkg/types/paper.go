// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-search.
// Paper is the harvested record kept in the store; ResultItem and the
// Query* types are the wire shapes of the query service.
package types

import "time"

// Paper holds the metadata harvested for one arXiv paper.
type Paper struct {
	// ID is the arXiv identifier with its version suffix (e.g. "2301.07041v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with newlines collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract with newlines collapsed.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the first-version publication date.
	Published time.Time `json:"published" yaml:"published"`

	// URL is the abstract page URL as returned by arXiv.
	URL string `json:"url" yaml:"url"`
}
