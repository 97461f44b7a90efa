package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIntent_IsValid tests the closed intent set
func TestIntent_IsValid(t *testing.T) {
	for _, intent := range AllIntents() {
		assert.True(t, intent.IsValid(), "%s should be valid", intent)
	}

	assert.False(t, Intent("").IsValid())
	assert.False(t, Intent("billing").IsValid())
}

// TestIntent_CategoryEligible tests only general is excluded from category search
func TestIntent_CategoryEligible(t *testing.T) {
	eligible := []Intent{
		IntentSupplements, IntentMedication, IntentMedicationQuery, IntentSymptomThroat,
		IntentProductList, IntentServiceInfo, IntentAppointment, IntentHours, IntentPricing,
	}
	for _, intent := range eligible {
		assert.True(t, intent.CategoryEligible(), "%s should be eligible", intent)
	}

	assert.False(t, IntentGeneral.CategoryEligible())
	assert.False(t, Intent("unknown").CategoryEligible())
}

// TestIntent_TemplateGroups tests template grouping helpers
func TestIntent_TemplateGroups(t *testing.T) {
	assert.True(t, IntentMedication.IsMedication())
	assert.True(t, IntentMedicationQuery.IsMedication())
	assert.False(t, IntentSupplements.IsMedication())

	assert.True(t, IntentServiceInfo.IsService())
	assert.True(t, IntentAppointment.IsService())
	assert.False(t, IntentHours.IsService())
}

// TestAllIntents_PriorityOrder tests detection priority starts with symptoms and ends with general
func TestAllIntents_PriorityOrder(t *testing.T) {
	intents := AllIntents()

	assert.Len(t, intents, 10)
	assert.Equal(t, IntentSymptomThroat, intents[0])
	assert.Equal(t, IntentGeneral, intents[len(intents)-1])
}
