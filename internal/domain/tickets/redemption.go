package tickets

import (
	"fmt"
	"time"
)

type Outcome string

const (
	OutcomeAdmitted       Outcome = "admitted"
	OutcomeAlreadyScanned Outcome = "already_scanned"
	OutcomeRejected       Outcome = "rejected"
	OutcomeUnauthorized   Outcome = "unauthorized"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeInvalidRequest Outcome = "invalid_request"
)

type RejectionReason string

const (
	ReasonCancelled      RejectionReason = "cancelled"
	ReasonRefunded       RejectionReason = "refunded"
	ReasonTransferred    RejectionReason = "transferred"
	ReasonEventCancelled RejectionReason = "event_cancelled"
	ReasonTooEarly       RejectionReason = "too_early"
	ReasonEventEnded     RejectionReason = "event_ended"
)

type Attendee struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Admission struct {
	Ticket   Ticket
	Event    EventSummary
	Attendee Attendee
	Greeting string
}

type PriorScan struct {
	ScannedAt     time.Time
	ScannedBy     string
	ScannedByName string
	MinutesAgo    int
}

type Rejection struct {
	Reason         RejectionReason
	HoursRemaining *int
}

// RedemptionResult is a discriminated result: exactly one of the payload fields matching
// Outcome is set. Unauthorized and NotFound carry no payload.
type RedemptionResult struct {
	Outcome Outcome

	Admission *Admission
	PriorScan *PriorScan
	Rejection *Rejection

	// Problem describes why the request was invalid.
	Problem string
}

func Admitted(ticket Ticket, event Event) RedemptionResult {
	return RedemptionResult{
		Outcome: OutcomeAdmitted,
		Admission: &Admission{
			Ticket: ticket,
			Event:  event.Summary(),
			Attendee: Attendee{
				Name:  ticket.AttendeeName,
				Email: ticket.AttendeeEmail,
			},
			Greeting: greeting(ticket.AttendeeName, event.Title),
		},
	}
}

func AlreadyScanned(ticket Ticket, now time.Time) RedemptionResult {
	return RedemptionResult{
		Outcome:   OutcomeAlreadyScanned,
		PriorScan: priorScan(ticket, now),
	}
}

func Rejected(reason RejectionReason) RedemptionResult {
	return RedemptionResult{
		Outcome:   OutcomeRejected,
		Rejection: &Rejection{Reason: reason},
	}
}

func RejectedTooEarly(hoursRemaining int) RedemptionResult {
	return RedemptionResult{
		Outcome: OutcomeRejected,
		Rejection: &Rejection{
			Reason:         ReasonTooEarly,
			HoursRemaining: &hoursRemaining,
		},
	}
}

func Unauthorized() RedemptionResult {
	return RedemptionResult{Outcome: OutcomeUnauthorized}
}

func NotFound() RedemptionResult {
	return RedemptionResult{Outcome: OutcomeNotFound}
}

func InvalidRequest(problem string) RedemptionResult {
	return RedemptionResult{Outcome: OutcomeInvalidRequest, Problem: problem}
}

// EvaluateRedemption runs the ticket and event checks in order. It returns the
// non-admission result and true when any check fails, or a zero result and false
// when the ticket may be admitted.
func EvaluateRedemption(ticket Ticket, event Event, now time.Time, policy WindowPolicy) (RedemptionResult, bool) {
	switch ticket.Status {
	case StatusCancelled:
		return Rejected(ReasonCancelled), true
	case StatusRefunded:
		return Rejected(ReasonRefunded), true
	case StatusTransferred:
		return Rejected(ReasonTransferred), true
	}

	if ticket.ScannedAt != nil || ticket.Status == StatusScanned {
		return AlreadyScanned(ticket, now), true
	}

	return evaluateEvent(event, now, policy)
}

// evaluateEvent runs the checks that depend only on the parent event.
func evaluateEvent(event Event, now time.Time, policy WindowPolicy) (RedemptionResult, bool) {
	switch {
	case event.IsCancelled():
		return Rejected(ReasonEventCancelled), true
	case event.IsCompleted():
		return Rejected(ReasonEventEnded), true
	}

	decision := policy.Evaluate(event.StartDate, event.EndDate, now)
	switch decision.Verdict {
	case WindowTooEarly:
		return RejectedTooEarly(decision.HoursRemaining), true
	case WindowTooLate:
		return Rejected(ReasonEventEnded), true
	}

	return RedemptionResult{}, false
}

// Message is the one human readable line shown to the scanning staff member.
func (r RedemptionResult) Message() string {
	switch r.Outcome {
	case OutcomeAdmitted:
		if r.Admission != nil {
			return r.Admission.Greeting
		}
		return "Welcome!"
	case OutcomeAlreadyScanned:
		if r.PriorScan == nil {
			return "Ticket already scanned"
		}
		return "Already scanned " + minutesAgoText(r.PriorScan.MinutesAgo)
	case OutcomeRejected:
		if r.Rejection == nil {
			return "Ticket rejected"
		}
		return r.Rejection.message()
	case OutcomeUnauthorized:
		return "You are not authorized to scan tickets"
	case OutcomeNotFound:
		return "Ticket not found"
	case OutcomeInvalidRequest:
		return "Invalid request: " + r.Problem
	default:
		return ""
	}
}

func (r Rejection) message() string {
	switch r.Reason {
	case ReasonCancelled:
		return "Ticket has been cancelled"
	case ReasonRefunded:
		return "Ticket has been refunded"
	case ReasonTransferred:
		return "Ticket has been transferred to another holder"
	case ReasonEventCancelled:
		return "Event has been cancelled"
	case ReasonTooEarly:
		if r.HoursRemaining == nil {
			return "Ticket scanning has not opened yet"
		}
		return "Ticket scanning opens in " + plural(*r.HoursRemaining, "hour")
	case ReasonEventEnded:
		return "Event has ended"
	default:
		return "Ticket rejected"
	}
}

func priorScan(ticket Ticket, now time.Time) *PriorScan {
	p := &PriorScan{}
	if ticket.ScannedAt != nil {
		p.ScannedAt = *ticket.ScannedAt
		p.MinutesAgo = MinutesBetween(*ticket.ScannedAt, now)
	}
	if ticket.ScannedBy != nil {
		p.ScannedBy = *ticket.ScannedBy
	}
	if ticket.LastScan != nil {
		p.ScannedByName = ticket.LastScan.ScannerName
	}
	return p
}

// MinutesBetween returns the whole minutes elapsed from then to now, never negative.
func MinutesBetween(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

func greeting(name, eventTitle string) string {
	switch {
	case name != "" && eventTitle != "":
		return fmt.Sprintf("Welcome, %s! Enjoy %s.", name, eventTitle)
	case name != "":
		return fmt.Sprintf("Welcome, %s!", name)
	case eventTitle != "":
		return fmt.Sprintf("Welcome! Enjoy %s.", eventTitle)
	default:
		return "Welcome!"
	}
}

func minutesAgoText(minutes int) string {
	if minutes < 1 {
		return "less than a minute ago"
	}
	return plural(minutes, "minute") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
