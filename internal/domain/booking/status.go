package booking

// restrictedTargets lists the only statuses a detail may move to from a
// settled or canceled state. Any other source status may move anywhere.
var restrictedTargets = map[Status][]Status{
	StatusCompletePayment: {StatusCompletePayment, StatusWithholdPayment},
	StatusWithholdPayment: {StatusCompletePayment, StatusWithholdPayment},
	StatusCanceled:        {StatusCompletePayment, StatusWithholdPayment, StatusCanceled},
}

// CanTransition reports whether a detail in status from may be set to to.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	allowed, restricted := restrictedTargets[from]
	if !restricted {
		return true
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// NeedsOverlapCheck reports whether a candidate in status s must be checked
// for double booking when it is saved. A detail waiting for cancellation
// never is; otherwise the main detail of a booking always is.
func NeedsOverlapCheck(s Status, main bool) bool {
	if s == StatusWaitingCancel {
		return false
	}
	if main {
		return true
	}
	return s == StatusOfficial || s == StatusTemporary
}
