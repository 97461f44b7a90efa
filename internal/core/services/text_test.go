package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldText(t *testing.T) {
	assert.Equal(t, "informacion relevante", foldText("Información RELEVANTE"))
	assert.Equal(t, "¿que horario tienen?", foldText("¿Qué horario tienen?"))
	assert.Equal(t, "nino", foldText("Niño"))
}

func TestTokenize(t *testing.T) {
	terms := tokenize("¿Qué horario tiene la farmacia? HORARIO de atención")

	assert.Equal(t, []string{"que", "horario", "tiene", "farmacia", "horario", "atencion"}, terms)
}

func TestTokenize_DropsShortTerms(t *testing.T) {
	assert.Empty(t, tokenize("a de la D 12"))
	assert.Equal(t, []string{"100"}, tokenize("D3 100"))
}
