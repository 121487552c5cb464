package booking

import "fmt"

// updateTransitions governs status changes requested through UpdateStatus.
// Every pair is allowed; payment status is never touched.
var updateTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusPending: true, StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true},
	StatusConfirmed: {StatusPending: true, StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {StatusPending: true, StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true},
	StatusCancelled: {StatusPending: true, StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true},
}

// cancelTransitions governs owner cancellation.
var cancelTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusCancelled: true},
	StatusConfirmed: {StatusCancelled: true},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := updateTransitions[st]; !ok {
		return "", fmt.Errorf("unknown booking status %q", s)
	}
	return st, nil
}

func canTransition(table map[Status]map[Status]bool, from, to Status) bool {
	return table[from][to]
}

// sourcesFor lists the statuses from which table allows moving to target.
func sourcesFor(table map[Status]map[Status]bool, target Status) []Status {
	var out []Status
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if table[from][target] {
			out = append(out, from)
		}
	}
	return out
}

func (s Status) IsActive() bool {
	return s != StatusCancelled
}
