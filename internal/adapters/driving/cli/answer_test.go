package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

func TestContextCmd_PrintsContext(t *testing.T) {
	retrieval := &mockRetrievalService{}
	cleanup := setupServices(retrieval, &mockIngestService{}, newMockSettingsService())
	defer cleanup()

	out, err := executeCommand("context", "opening", "hours")

	require.NoError(t, err)
	assert.Equal(t, "opening hours", retrieval.lastQuery)
	assert.Contains(t, out, "open Monday to Saturday")
}

func TestContextCmd_NoContext(t *testing.T) {
	cleanup := setupServices(&mockRetrievalService{empty: true}, &mockIngestService{}, newMockSettingsService())
	defer cleanup()

	out, err := executeCommand("context", "weather")

	require.NoError(t, err)
	assert.Contains(t, out, "No relevant information found.")
}

func TestAnswerCmd_PrintsResponse(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("answer", "are you open on saturday")

	require.NoError(t, err)
	assert.Contains(t, out, "We are open Monday to Saturday")
	assert.Contains(t, out, "Suggested actions:")
	assert.Contains(t, out, "- Find the nearest branch")
}

func TestAnswerCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("answer", "--json", "hours")

	require.NoError(t, err)
	var resp domain.StructuredResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.IntentHours, resp.Intent)
	assert.Equal(t, []string{"Find the nearest branch"}, resp.SuggestedActions)
}

func TestAnswerCmd_ServiceError(t *testing.T) {
	cleanup := setupServices(
		&mockRetrievalService{err: domain.ErrEmbeddingUnavailable}, &mockIngestService{}, newMockSettingsService(),
	)
	defer cleanup()

	_, err := executeCommand("answer", "hours")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
