// Package envisage is the Composition Root for the ENVISAGE application.
//
// It connects the pipeline logic (Domain Layer) with the infrastructure
// adapters (Persistence, Sources, OCR) using the Hexagonal Architecture
// pattern.
//
// Philosophy:
//
// ENVISAGE turns fleeting on-screen information into durable, searchable
// notes. It watches a screenshots directory and the system clipboard,
// fingerprints every capture to avoid storing the same thing twice, runs
// an external OCR engine over images, and persists the extracted text as
// Markdown notes with YAML frontmatter. The note collection can be
// rendered into a static browsable site at any time.
//
// Features:
//
//   - **Hexagonal Architecture**: pipeline logic is isolated from
//     persistence and capture details.
//   - **Content Dedup**: SHA-256 fingerprints guarantee one note per
//     unique capture, across restarts.
//   - **Metadata First**: native frontmatter parsing and indexing.
//   - **Default Adapter (FS + Git)**: local Markdown files with optional
//     Git versioning and remote sync.
//   - **Static Site**: per-note pages plus a newest-first index table.
//
// Usage:
//
//	cfg, _ := envisage.LoadConfig("")
//	svc, err := envisage.New(cfg,
//		envisage.WithAutoInit(true),
//		envisage.WithLogger(logger),
//	)
//
//	// Ingest a capture
//	note, err := svc.Ingest(ctx, capture)
package envisage
