// Package plaintext provides the Normaliser for plain text knowledge files.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// byteOrderMark is the UTF-8 BOM some editors prepend.
const byteOrderMark = "\uFEFF"

// Normaliser cleans plain text: it drops a BOM, unifies line endings and
// decodes legacy Windows-1252 files to UTF-8. Binary content is rejected.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text"}
}

// Normalise returns doc with its text cleaned.
func (n *Normaliser) Normalise(_ context.Context, doc *domain.SourceDocument) (*domain.SourceDocument, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	text := doc.Text
	if !utf8.ValidString(text) {
		mtype := mimetype.Detect([]byte(text))
		if !strings.HasPrefix(mtype.String(), "text/") {
			return nil, fmt.Errorf("%w: %s looks like %s", domain.ErrUnsupportedType, doc.Source, mtype.String())
		}
		decoded, err := decodeWindows1252(text)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Source, err)
		}
		text = decoded
	}

	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return &domain.SourceDocument{Source: doc.Source, Text: strings.TrimSpace(text)}, nil
}

// decodeWindows1252 converts Windows-1252 (a superset of Latin-1) to UTF-8.
func decodeWindows1252(s string) (string, error) {
	return charmap.Windows1252.NewDecoder().String(s)
}
