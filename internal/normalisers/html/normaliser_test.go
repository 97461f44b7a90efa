package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".html", ".htm"}, New().Extensions())
}

func TestNormalise(t *testing.T) {
	doc := &domain.SourceDocument{
		Source: "horario.html",
		Text: `<html><head><title>Horario &amp; Contacto</title><style>p{color:red}</style></head>` +
			`<body><h1>Horario</h1><p>Lunes a viernes: 9 a 20 &amp; sábados</p>` +
			`<script>track()</script><ul><li>Domingo cerrado</li></ul></body></html>`,
	}

	got, err := New().Normalise(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, "horario.html", got.Source)
	assert.Equal(t,
		"Horario & Contacto\nHorario\nLunes a viernes: 9 a 20 & sábados\nDomingo cerrado",
		got.Text)
}

func TestNormalise_TitleAlreadyLeading(t *testing.T) {
	doc := &domain.SourceDocument{
		Source: "a.html",
		Text:   `<title>Vacunas</title><body><h1>Vacunas</h1><p>Gripe y COVID</p></body>`,
	}

	got, err := New().Normalise(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, "Vacunas\nGripe y COVID", got.Text)
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comments removed", "a<!-- hidden -->b", "ab"},
		{"br to newline", "línea 1<br/>línea 2", "línea 1\nlínea 2"},
		{"svg removed", "<svg><text>logo</text></svg>Texto", "Texto"},
		{"spaces collapsed", "<p>  mucho    espacio </p>", "mucho espacio"},
		{"entities decoded", "&lt;5 años&gt;", "<5 años>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHTML(tt.input))
		})
	}
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Farmacia", extractTitle("<TITLE> Farmacia </TITLE>"))
	assert.Empty(t, extractTitle("<p>sin título</p>"))
}
