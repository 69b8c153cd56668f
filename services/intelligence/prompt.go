package intelligence

import (
	"fmt"

	"aftervisit/models"
)

const systemPrompt = `You are provided with notes written by a doctor from a patient's visit.
Your job is to summarize the visit for the doctor and provide an email.
Reply with exactly three sections with the headings:
### Summary of visit for the doctor's records
### Next steps for the doctor
### Draft of email to patient in patient-friendly language`

func userPromptFor(visit models.Visit) string {
	return fmt.Sprintf(`Create the summary, next steps and draft email for:
Patient Name: %s
Date of Visit: %s
Notes:
%s`, visit.PatientName, visit.DateOfVisit, visit.Notes)
}
