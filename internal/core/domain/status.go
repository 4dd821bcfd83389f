package domain

var AllStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// ordinal places the status on the Pending -> Confirmed -> Completed line.
// Cancelled is off the line and returns -1.
func (s BookingStatus) ordinal() int {
	switch s {
	case BookingPending:
		return 0
	case BookingConfirmed:
		return 1
	case BookingCompleted:
		return 2
	}
	return -1
}

// TransitionPolicy decides whether an admin may move a booking between two
// statuses.
type TransitionPolicy interface {
	Allow(from, to BookingStatus) bool
}

// PermissiveTransitions allows any status to any status, which is what the
// admin dashboard's status selector has always done.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allow(from, to BookingStatus) bool {
	return to.Valid()
}

var strictTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled},
	BookingConfirmed: {BookingConfirmed, BookingCompleted, BookingCancelled},
	BookingCompleted: {BookingCompleted},
	BookingCancelled: {BookingCancelled},
}

// StrictTransitions only moves forward and never leaves Completed or
// Cancelled. Re-setting the current status is allowed.
type StrictTransitions struct{}

func (StrictTransitions) Allow(from, to BookingStatus) bool {
	for _, s := range strictTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type StepState string

const (
	StepCompleted StepState = "completed"
	StepActive    StepState = "active"
	StepPending   StepState = "pending"
	StepError     StepState = "error"
)

type TimelineStep struct {
	Status BookingStatus `json:"status"`
	Label  string        `json:"label"`
	State  StepState     `json:"state"`
}

var timelineSteps = []struct {
	status BookingStatus
	label  string
}{
	{BookingPending, "Booking Received"},
	{BookingConfirmed, "Professional Assigned"},
	{BookingCompleted, "Service Completed"},
}

// Timeline derives the three-step tracking view from a booking status.
func Timeline(status BookingStatus) []TimelineStep {
	current := status.ordinal()
	steps := make([]TimelineStep, len(timelineSteps))

	for i, st := range timelineSteps {
		state := StepPending
		switch {
		case status == BookingCancelled:
			state = StepError
		case current >= i:
			state = StepCompleted
		case current == i-1:
			state = StepActive
		}
		steps[i] = TimelineStep{Status: st.status, Label: st.label, State: state}
	}

	return steps
}
