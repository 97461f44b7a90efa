package domain

// Intent is the coarse, retrieval-scoped classification of a customer query.
type Intent string

// The closed set of intents.
const (
	IntentSymptomThroat   Intent = "symptom_throat"
	IntentMedicationQuery Intent = "medication_query"
	IntentSupplements     Intent = "supplements"
	IntentMedication      Intent = "medication"
	IntentProductList     Intent = "product_list"
	IntentServiceInfo     Intent = "service_info"
	IntentAppointment     Intent = "appointment"
	IntentHours           Intent = "hours"
	IntentPricing         Intent = "pricing"
	IntentGeneral         Intent = "general"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentSymptomThroat, IntentMedicationQuery, IntentSupplements, IntentMedication,
		IntentProductList, IntentServiceInfo, IntentAppointment, IntentHours,
		IntentPricing, IntentGeneral:
		return true
	default:
		return false
	}
}

// CategoryEligible returns true if the category filter stage may run for this intent.
// Every intent except general is eligible.
func (i Intent) CategoryEligible() bool {
	return i.IsValid() && i != IntentGeneral
}

// IsMedication returns true for intents answered with the medication template.
func (i Intent) IsMedication() bool {
	return i == IntentMedication || i == IntentMedicationQuery
}

// IsService returns true for intents answered with the booking template.
func (i Intent) IsService() bool {
	return i == IntentServiceInfo || i == IntentAppointment
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// AllIntents returns every intent in detection priority order.
func AllIntents() []Intent {
	return []Intent{
		IntentSymptomThroat,
		IntentMedicationQuery,
		IntentMedication,
		IntentSupplements,
		IntentProductList,
		IntentAppointment,
		IntentServiceInfo,
		IntentHours,
		IntentPricing,
		IntentGeneral,
	}
}
