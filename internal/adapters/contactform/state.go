package contactform

// State is the phase of the contact form.
type State int

// Form states. Every submission ends back in Idle.
const (
	Idle State = iota
	Validating
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Transition is emitted to observers on every state change. Message is set
// when entering Success or Error.
type Transition struct {
	From    State
	To      State
	Message string
}

// Observer receives transitions synchronously, in order.
type Observer func(Transition)
