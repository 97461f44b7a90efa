package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
)

// CategoryBaseScore is the flat score assigned to every category match.
const CategoryBaseScore = 0.25

// categoryKeywords bounds each eligible intent to a folded vocabulary.
var categoryKeywords = map[domain.Intent][]string{
	domain.IntentSupplements: {
		"vitamina", "suplemento", "omega", "magnesio", "zinc", "hierro", "calcio",
		"colageno", "probiotico", "multivitaminico",
	},
	domain.IntentMedication: {
		"medicamento", "farmaco", "receta", "comprimido", "capsula", "jarabe",
		"analgesico", "antibiotico", "paracetamol", "ibuprofeno",
	},
	domain.IntentMedicationQuery: {
		"medicamento", "farmaco", "receta", "dosis", "posologia", "indicaciones",
		"contraindicaciones", "efectos secundarios", "prescripcion",
	},
	domain.IntentSymptomThroat: {
		"garganta", "faringitis", "amigdalitis", "ronquera", "pastillas para chupar",
	},
	domain.IntentProductList: {
		"producto", "catalogo", "disponible", "stock", "marca",
	},
	domain.IntentServiceInfo: {
		"servicio", "atencion", "vacuna", "presion arterial", "glucosa", "inyectable",
	},
	domain.IntentAppointment: {
		"cita", "reserva", "agendar", "turno",
	},
	domain.IntentHours: {
		"horario", "apertura", "cierre", "abierto", "lunes", "domingo", "feriado",
	},
	domain.IntentPricing: {
		"precio", "costo", "tarifa", "descuento", "oferta", "$",
	},
}

// CategorySearch matches chunks against the keyword set of an intent.
type CategorySearch struct {
	store driven.KnowledgeStore
}

// NewCategorySearch creates a category search over store.
func NewCategorySearch(store driven.KnowledgeStore) *CategorySearch {
	return &CategorySearch{store: store}
}

// Search returns up to k chunks, in store order, whose text contains any
// keyword of intent. Intents without a keyword set yield no results.
func (c *CategorySearch) Search(
	ctx context.Context, intent domain.Intent, k int, minScore float64,
) ([]domain.SearchResult, error) {
	keywords, ok := categoryKeywords[intent]
	if !ok || !intent.CategoryEligible() || k <= 0 {
		return []domain.SearchResult{}, nil
	}
	if CategoryBaseScore < minScore {
		return []domain.SearchResult{}, nil
	}

	chunks, err := c.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	results := []domain.SearchResult{}
	for _, chunk := range chunks {
		if !containsAny(foldText(chunk.Text), keywords) {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: CategoryBaseScore})
		if len(results) == k {
			break
		}
	}

	return results, nil
}
