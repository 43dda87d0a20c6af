//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch harvests papers from arXiv into data/arxiv_papers.db.
func Fetch() error {
	ensureBuilt()
	return sh.RunV(binPath, "fetch")
}

// Index rebuilds the retrieval index from the paper store.
func Index() error {
	ensureBuilt()
	return sh.RunV(binPath, "index")
}

// Serve starts the query API on :8000.
func Serve() error {
	ensureBuilt()
	return sh.RunV(binPath, "serve")
}

// UI starts the search form on :3000. Run Serve in another terminal.
func UI() error {
	ensureBuilt()
	return sh.RunV(binPath, "ui")
}

// Pipeline runs fetch then index.
func Pipeline() {
	mg.SerialDeps(Fetch, Index)
}
