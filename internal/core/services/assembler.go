package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// ContextMinScore is the cutoff applied when assembling context. It is
// stricter than the fallback threshold, so a result can have relevant
// context at search level and still assemble to an empty string.
const ContextMinScore = 0.20

// maxAnswerBullets limits how many chunks a templated answer quotes.
const maxAnswerBullets = 3

const contextHeader = "Información relevante de la base de conocimiento:"

// MedicalDisclaimer closes every health-related templated answer.
const MedicalDisclaimer = "Esta información es orientativa y no reemplaza la consulta con un " +
	"profesional de la salud. Si los síntomas persisten o empeoran, consulte a su médico."

// prescriptionMarkers flag a chunk as describing a prescription-only product.
var prescriptionMarkers = []string{"receta", "prescripcion"}

// GenerateContext renders retrieved chunks as a context block for a
// language model. It returns "" when nothing passes ContextMinScore.
func (s *RetrievalService) GenerateContext(ctx context.Context, query string) (string, error) {
	result, err := s.Search(ctx, query, 0)
	if err != nil {
		return "", err
	}
	if !result.HasRelevantContext {
		return "", nil
	}

	relevant := relevantChunks(result.Chunks)
	if len(relevant) == 0 {
		logger.Debug("No chunks above context cutoff %.2f", ContextMinScore)
		return "", nil
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	for _, r := range relevant {
		fmt.Fprintf(&b, "\n• %s (relevance: %.2f): %s", r.Chunk.Source, r.Score, r.Chunk.Text)
	}
	return b.String(), nil
}

// GenerateStructuredResponse builds a templated answer for query, chosen by
// its detected intent.
func (s *RetrievalService) GenerateStructuredResponse(
	ctx context.Context, query string,
) (*domain.StructuredResponse, error) {
	result, err := s.Search(ctx, query, 0)
	if err != nil {
		return nil, err
	}

	relevant := relevantChunks(result.Chunks)
	var resp *domain.StructuredResponse

	switch {
	case result.Intent == domain.IntentSymptomThroat:
		resp = throatResponse(relevant)
	case result.Intent.IsMedication():
		resp = medicationResponse(relevant, requiresPrescription(result.Chunks))
	case result.Intent.IsService():
		resp = serviceResponse(relevant)
	default:
		resp = genericResponse(relevant)
	}

	resp.Intent = result.Intent
	logger.Debug("Structured response: intent=%s needsUserInput=%t", resp.Intent, resp.NeedsUserInput)
	return resp, nil
}

func relevantChunks(chunks []domain.SearchResult) []domain.SearchResult {
	var out []domain.SearchResult
	for _, c := range chunks {
		if c.Score >= ContextMinScore {
			out = append(out, c)
		}
	}
	return out
}

func requiresPrescription(chunks []domain.SearchResult) bool {
	for _, c := range chunks {
		if containsAny(foldText(c.Chunk.Text), prescriptionMarkers) {
			return true
		}
	}
	return false
}

// bullets renders up to maxAnswerBullets chunk texts as a list.
func bullets(chunks []domain.SearchResult) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == maxAnswerBullets {
			break
		}
		b.WriteString("\n• ")
		b.WriteString(strings.TrimSpace(c.Chunk.Text))
	}
	return b.String()
}

func throatResponse(chunks []domain.SearchResult) *domain.StructuredResponse {
	var b strings.Builder
	b.WriteString("Para el dolor de garganta contamos con opciones de venta libre, " +
		"como pastillas para chupar, sprays y analgésicos suaves.")
	if len(chunks) > 0 {
		b.WriteString("\n\nSegún nuestra información:")
		b.WriteString(bullets(chunks))
	}
	b.WriteString("\n\n¿Desde cuándo tiene las molestias? ¿Tiene fiebre o dificultad para tragar?")
	b.WriteString("\n\n" + MedicalDisclaimer)

	return &domain.StructuredResponse{
		Response:       b.String(),
		NeedsUserInput: true,
		SuggestedActions: []string{
			"Consultar con el farmacéutico",
			"Ver productos para la garganta",
			"Agendar una consulta",
		},
	}
}

func medicationResponse(chunks []domain.SearchResult, prescription bool) *domain.StructuredResponse {
	var b strings.Builder
	resp := &domain.StructuredResponse{}

	if prescription {
		b.WriteString("Este medicamento requiere receta médica. " +
			"Por favor, tenga su receta a mano para que podamos ayudarle.")
		resp.NeedsUserInput = true
		resp.SuggestedActions = []string{
			"Enviar receta médica",
			"Consultar con el farmacéutico",
			"Ver alternativas de venta libre",
		}
	} else {
		b.WriteString("Este medicamento es de venta libre.")
		resp.SuggestedActions = []string{
			"Consultar disponibilidad",
			"Consultar precio",
			"Consultar con el farmacéutico",
		}
	}

	if len(chunks) > 0 {
		b.WriteString("\n\nSegún nuestra información:")
		b.WriteString(bullets(chunks))
	}
	b.WriteString("\n\n" + MedicalDisclaimer)

	resp.Response = b.String()
	return resp
}

func serviceResponse(chunks []domain.SearchResult) *domain.StructuredResponse {
	var b strings.Builder
	if len(chunks) > 0 {
		b.WriteString("Estos son los servicios que ofrecemos:")
		b.WriteString(bullets(chunks))
	} else {
		b.WriteString("Ofrecemos servicios de atención farmacéutica en nuestra sucursal.")
	}
	b.WriteString("\n\n¿Desea agendar una cita? Indíquenos el día y la hora que prefiera.")

	return &domain.StructuredResponse{
		Response:       b.String(),
		NeedsUserInput: true,
		SuggestedActions: []string{
			"Agendar cita",
			"Ver servicios disponibles",
			"Consultar horarios",
		},
	}
}

func genericResponse(chunks []domain.SearchResult) *domain.StructuredResponse {
	if len(chunks) == 0 {
		return &domain.StructuredResponse{
			Response: "Lo siento, no encontré información sobre su consulta. " +
				"¿Podría darme más detalles?",
			NeedsUserInput: true,
			SuggestedActions: []string{
				"Reformular la pregunta",
				"Hablar con un farmacéutico",
			},
		}
	}

	return &domain.StructuredResponse{
		Response: "Esto es lo que encontré:" + bullets(chunks),
		SuggestedActions: []string{
			"Ver más información",
			"Hablar con un farmacéutico",
		},
	}
}
