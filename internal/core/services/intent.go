package services

import (
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// intentRule pairs a predicate over folded query text with the intent it
// selects. Rules are evaluated in slice order and the first match wins.
type intentRule struct {
	intent  domain.Intent
	matches func(folded string) bool
}

// phrases returns a predicate matching any of the given whole words or
// multi-word phrases. Phrases must already be folded.
func phrases(list ...string) func(string) bool {
	return func(folded string) bool {
		padded := " " + folded + " "
		for _, p := range list {
			if strings.Contains(padded, " "+p+" ") {
				return true
			}
		}
		return false
	}
}

// intentRules is ordered by priority. Symptom and medication questions
// must beat the broader product and service vocabularies.
var intentRules = []intentRule{
	{domain.IntentSymptomThroat, phrases(
		"garganta", "faringitis", "amigdalitis", "ronquera", "carraspera", "afonia",
	)},
	{domain.IntentMedicationQuery, phrases(
		"para que sirve", "para que es", "puedo tomar", "se puede tomar", "dosis de",
		"como se toma", "cada cuanto", "efectos secundarios", "contraindicaciones",
		"necesita receta", "necesito receta",
	)},
	{domain.IntentMedication, phrases(
		"medicamento", "medicamentos", "medicina", "medicinas", "farmaco", "farmacos",
		"paracetamol", "ibuprofeno", "amoxicilina", "antibiotico", "antibioticos",
		"analgesico", "analgesicos", "antigripal", "receta",
	)},
	{domain.IntentSupplements, phrases(
		"vitamina", "vitaminas", "suplemento", "suplementos", "multivitaminico",
		"omega", "magnesio", "colageno", "probiotico", "probioticos", "minerales",
	)},
	{domain.IntentProductList, phrases(
		"productos", "catalogo", "que venden", "lista de productos", "disponible",
		"disponibles", "stock",
	)},
	{domain.IntentAppointment, phrases(
		"cita", "citas", "agendar", "reservar", "reserva", "turno",
	)},
	{domain.IntentServiceInfo, phrases(
		"servicio", "servicios", "vacuna", "vacunas", "vacunacion", "presion arterial",
		"inyectable", "inyectables", "consulta", "glucosa",
	)},
	{domain.IntentHours, phrases(
		"horario", "horarios", "hora", "abre", "abren", "abierto", "abierta",
		"cierra", "cierran", "domingo", "feriado",
	)},
	{domain.IntentPricing, phrases(
		"precio", "precios", "cuesta", "cuestan", "costo", "vale", "valen",
		"tarifa", "descuento", "oferta",
	)},
}

// expansionSuffixes holds the vocabulary appended to a query per intent.
// General queries are never expanded.
var expansionSuffixes = map[domain.Intent]string{
	domain.IntentSymptomThroat:   "dolor de garganta faringitis pastillas spray",
	domain.IntentMedicationQuery: "medicamento indicaciones posologia receta",
	domain.IntentMedication:      "medicamento farmaco receta",
	domain.IntentSupplements:     "suplementos vitaminas minerales complementos nutricionales",
	domain.IntentProductList:     "productos catalogo disponibles",
	domain.IntentAppointment:     "cita reservar agendar",
	domain.IntentServiceInfo:     "servicios atencion farmaceutica",
	domain.IntentHours:           "horario apertura cierre",
	domain.IntentPricing:         "precio costo tarifa",
}

// DetectIntent classifies query using the ordered rule table.
// Queries matching no rule are IntentGeneral.
func DetectIntent(query string) domain.Intent {
	folded := strings.Join(words(foldText(query)), " ")
	if folded == "" {
		return domain.IntentGeneral
	}

	for _, rule := range intentRules {
		if rule.matches(folded) {
			return rule.intent
		}
	}
	return domain.IntentGeneral
}

// ExpandQuery appends the intent's vocabulary to query. The original
// text is always kept verbatim as the prefix.
func ExpandQuery(query string, intent domain.Intent) string {
	suffix, ok := expansionSuffixes[intent]
	if !ok {
		return query
	}
	return query + " " + suffix
}
