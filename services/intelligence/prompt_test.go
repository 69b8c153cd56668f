package intelligence

import (
	"strings"
	"testing"

	"aftervisit/models"

	"github.com/stretchr/testify/assert"
)

func TestUserPromptForIncludesAllVisitFields(t *testing.T) {
	visit := models.Visit{
		PatientName: "Jane Doe",
		DateOfVisit: "2024-01-05",
		Notes:       "BP 120/80, no complaints",
	}

	prompt := userPromptFor(visit)

	assert.Contains(t, prompt, "Patient Name: Jane Doe")
	assert.Contains(t, prompt, "Date of Visit: 2024-01-05")
	assert.Contains(t, prompt, "BP 120/80, no complaints")
}

func TestSystemPromptRequestsThreeSections(t *testing.T) {
	headings := []string{
		"### Summary of visit for the doctor's records",
		"### Next steps for the doctor",
		"### Draft of email to patient in patient-friendly language",
	}
	for _, h := range headings {
		assert.True(t, strings.Contains(systemPrompt, h), "missing heading %q", h)
	}
}
