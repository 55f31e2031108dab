// Package artifact turns an assembled deck into a downloadable file.
// The binary slide serializer is an external collaborator; the default
// implementation here writes the deck's JSON representation, which the
// download endpoint serves back.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/deckforge/internal/deck"
)

// Handle is an opaque reference to a generated artifact, redeemable via
// the download endpoint.
type Handle struct {
	Filename string `json:"filename"`
	URL      string `json:"download_url"`
	Path     string `json:"-"`
}

// Assembler produces an artifact from a finished deck. It is invoked
// exactly once per successful run, after the final stage.
type Assembler interface {
	Assemble(ctx context.Context, d *deck.Deck) (Handle, error)
}

// JSONAssembler writes decks as pretty-printed JSON files under a
// single output directory.
type JSONAssembler struct {
	outputDir string
	// now is injectable for deterministic filenames in tests.
	now func() time.Time
}

// NewJSONAssembler creates an assembler rooted at outputDir, creating
// the directory if needed.
func NewJSONAssembler(outputDir string) (*JSONAssembler, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &JSONAssembler{outputDir: outputDir, now: time.Now}, nil
}

// Assemble implements Assembler.
func (a *JSONAssembler) Assemble(ctx context.Context, d *deck.Deck) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	slug := Slugify(d.Topic)
	if slug == "" {
		slug = "deck"
	}
	filename := fmt.Sprintf("ppt_%s_%s_%s.json",
		slug, a.now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(a.outputDir, filename)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return Handle{}, fmt.Errorf("marshal deck: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Handle{}, fmt.Errorf("write artifact %s: %w", path, err)
	}

	return Handle{
		Filename: filename,
		URL:      "/api/download/" + filename,
		Path:     path,
	}, nil
}
