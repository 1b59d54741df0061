package handlers

import (
	"github.com/uptrace/bun"

	"github.com/racedaylabs/raceday/importer"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db       *bun.DB
	importer *importer.Importer
	JWTKey   []byte
}

// New creates a Handler with the given database, import pipeline and JWT signing key.
func New(db *bun.DB, imp *importer.Importer, jwtKey []byte) *Handler {
	return &Handler{db: db, importer: imp, JWTKey: jwtKey}
}
