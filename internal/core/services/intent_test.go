package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		query string
		want  domain.Intent
	}{
		{"Me duele la garganta desde ayer", domain.IntentSymptomThroat},
		{"¿Para qué sirve el ibuprofeno?", domain.IntentMedicationQuery},
		{"¿Necesito receta para la amoxicilina?", domain.IntentMedicationQuery},
		{"¿Tienen paracetamol?", domain.IntentMedication},
		{"vitamina D dosis", domain.IntentSupplements},
		{"¿Qué productos venden para bebés?", domain.IntentProductList},
		{"Quiero agendar una cita", domain.IntentAppointment},
		{"¿Tienen servicio de vacunación?", domain.IntentServiceInfo},
		{"¿qué horario tienen?", domain.IntentHours},
		{"¿A qué hora abren el domingo?", domain.IntentHours},
		{"¿Cuánto cuesta?", domain.IntentPricing},
		{"Hola, buenos días", domain.IntentGeneral},
		{"", domain.IntentGeneral},
		{"   ", domain.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.query))
		})
	}
}

func TestDetectIntent_Priority(t *testing.T) {
	// Throat symptoms win over medication vocabulary.
	assert.Equal(t, domain.IntentSymptomThroat, DetectIntent("¿Qué medicamento tomo para la garganta?"))

	// Medication questions win over supplements.
	assert.Equal(t, domain.IntentMedicationQuery, DetectIntent("¿Puedo tomar vitamina C con antibióticos?"))

	// Appointment wins over service info.
	assert.Equal(t, domain.IntentAppointment, DetectIntent("Quiero reservar el servicio de vacunación"))

	// Hours win over pricing.
	assert.Equal(t, domain.IntentHours, DetectIntent("¿Cuál es el horario y el precio?"))
}

func TestDetectIntent_WholeWords(t *testing.T) {
	// "ahora" contains "hora" but is a different word.
	assert.Equal(t, domain.IntentGeneral, DetectIntent("ahora mismo"))

	// "dosis" alone is not a medication question.
	assert.NotEqual(t, domain.IntentMedicationQuery, DetectIntent("dosis"))
}

func TestDetectIntent_RuleOrderMatchesPriority(t *testing.T) {
	want := []domain.Intent{
		domain.IntentSymptomThroat,
		domain.IntentMedicationQuery,
		domain.IntentMedication,
		domain.IntentSupplements,
		domain.IntentProductList,
		domain.IntentAppointment,
		domain.IntentServiceInfo,
		domain.IntentHours,
		domain.IntentPricing,
	}

	got := make([]domain.Intent, len(intentRules))
	for i, rule := range intentRules {
		got[i] = rule.intent
	}
	assert.Equal(t, want, got)
}

func TestExpandQuery(t *testing.T) {
	for _, intent := range domain.AllIntents() {
		t.Run(intent.String(), func(t *testing.T) {
			query := "¿Qué horario tienen?"
			expanded := ExpandQuery(query, intent)

			assert.True(t, strings.HasPrefix(expanded, query+" ") || expanded == query)
			if intent == domain.IntentGeneral {
				assert.Equal(t, query, expanded)
			} else {
				assert.Greater(t, len(expanded), len(query))
			}
		})
	}
}

func TestExpandQuery_Supplements(t *testing.T) {
	expanded := ExpandQuery("vitamina D dosis", domain.IntentSupplements)

	assert.Equal(t, "vitamina D dosis suplementos vitaminas minerales complementos nutricionales", expanded)
}
