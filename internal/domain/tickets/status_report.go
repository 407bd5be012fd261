package tickets

import "time"

type Classification string

const (
	ClassValid          Classification = "valid"
	ClassAlreadyScanned Classification = "already_scanned"
	ClassCancelled      Classification = "cancelled"
	ClassRefunded       Classification = "refunded"
	ClassInvalid        Classification = "invalid"
	ClassUnauthorized   Classification = "unauthorized"
)

type StatusReport struct {
	Class   Classification
	Message string

	Ticket *Ticket
	Event  *EventSummary

	ScannedAt  *time.Time
	ScannedBy  string
	MinutesAgo int
}

func UnauthorizedReport() StatusReport {
	return StatusReport{
		Class:   ClassUnauthorized,
		Message: "You are not authorized to scan tickets",
	}
}

func InvalidReport(message string) StatusReport {
	return StatusReport{
		Class:   ClassInvalid,
		Message: message,
	}
}

// Classify puts a ticket into exactly one status class. It never mutates anything.
// A valid ticket whose event would refuse it is reported as invalid with the event reason.
func Classify(ticket Ticket, event Event, now time.Time, policy WindowPolicy) StatusReport {
	summary := event.Summary()
	report := StatusReport{
		Ticket: &ticket,
		Event:  &summary,
	}

	switch {
	case ticket.Status == StatusCancelled:
		report.Class = ClassCancelled
		report.Message = "Ticket has been cancelled"
	case ticket.Status == StatusRefunded:
		report.Class = ClassRefunded
		report.Message = "Ticket has been refunded"
	case ticket.Status == StatusTransferred:
		report.Class = ClassInvalid
		report.Message = "Ticket has been transferred to another holder"
	case ticket.ScannedAt != nil:
		prior := priorScan(ticket, now)
		report.Class = ClassAlreadyScanned
		report.ScannedAt = ticket.ScannedAt
		report.ScannedBy = prior.ScannedBy
		report.MinutesAgo = prior.MinutesAgo
		report.Message = "Already scanned " + minutesAgoText(prior.MinutesAgo)
	case ticket.Status == StatusValid:
		classifyValid(&report, event, now, policy)
	default:
		report.Class = ClassInvalid
		report.Message = "Ticket is not valid"
	}

	return report
}

func classifyValid(report *StatusReport, event Event, now time.Time, policy WindowPolicy) {
	rejection, rejected := evaluateEvent(event, now, policy)
	switch {
	case !rejected:
		report.Class = ClassValid
		report.Message = "Ticket is valid and ready to scan"
	case rejection.Rejection.Reason == ReasonTooEarly:
		report.Class = ClassValid
		report.Message = "Ticket is valid. " + rejection.Rejection.message()
	default:
		report.Class = ClassInvalid
		report.Message = rejection.Rejection.message()
	}
}
