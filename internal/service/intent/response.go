package intent

import (
	"fmt"

	"frontoffice-voice-console/internal/models"
)

// responseFor selects the canned reply for an intent, interpolated with
// whatever entities were extracted from the utterance.
func responseFor(intent models.Intent, entities models.EntityMap) string {
	switch intent {
	case models.IntentAppointmentScheduling:
		return appointmentResponse(entities)
	case models.IntentFinancialClearance:
		return financialResponse(entities)
	case models.IntentGeneralInquiry:
		return generalResponse(entities)
	default:
		return "I'm here to help. Could you please clarify what you need assistance with? " +
			"I can help with appointments, billing, or general information."
	}
}

func appointmentResponse(entities models.EntityMap) string {
	date := entities["date"]
	clock := entities["time"]

	switch {
	case date != "" && clock != "":
		return fmt.Sprintf("I can help you schedule an appointment for %s at %s. "+
			"Let me check our availability and get you booked.", date, clock)
	case date != "":
		return fmt.Sprintf("I can help you schedule an appointment for %s. "+
			"What time works best for you?", date)
	default:
		return "I can help you schedule an appointment. What day and time would work best for you?"
	}
}

func financialResponse(entities models.EntityMap) string {
	switch entities["billing_term"] {
	case "copay":
		return "I can help you understand your copay. Let me look up your insurance information and provide specific details."
	case "deductible":
		return "I can help you with deductible information. Let me check your coverage details."
	}
	if provider := entities["insurance_provider"]; provider != "" {
		return fmt.Sprintf("I can help you with your %s coverage questions. "+
			"What specific information do you need?", provider)
	}
	return "I can help you with insurance and billing questions. What would you like to know?"
}

func generalResponse(entities models.EntityMap) string {
	switch entities["inquiry_type"] {
	case "hours":
		return "Our office hours are Monday through Friday, 8 AM to 5 PM. We're closed on weekends and major holidays."
	case "location":
		return "We're located at 123 Medical Plaza Drive, Suite 100. There's ample parking available in the adjacent lot."
	case "contact":
		return "You can reach us at 555-0100. For urgent matters, please call our after-hours line."
	default:
		return "I'm here to help answer your questions. What information can I provide?"
	}
}
