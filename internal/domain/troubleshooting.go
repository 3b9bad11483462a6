package domain

// Step is the state id of the troubleshooting flow.
//
// StepConfirm doubles as the initial state of a fresh session and the terminal
// state of a finished one. A session that returns to StepConfirm after having
// advanced is complete and must be cleared.
type Step int

const (
	StepConfirm           Step = 0
	StepAwaitConfirmation Step = 1
	StepSelectDevice      Step = 2
	StepSelectProblem     Step = 3
	StepRate              Step = 4
)

func (s Step) Valid() bool {
	return s >= StepConfirm && s <= StepRate
}

func (s Step) String() string {
	switch s {
	case StepConfirm:
		return "confirm"
	case StepAwaitConfirmation:
		return "await_confirmation"
	case StepSelectDevice:
		return "select_device"
	case StepSelectProblem:
		return "select_problem"
	case StepRate:
		return "rate"
	default:
		return "unknown"
	}
}

// TroubleshootingSession is the unit of cross-turn persistence of the guided flow.
// Empty DeviceType/ProblemType and a zero Rating mean "not selected yet".
type TroubleshootingSession struct {
	Step           Step
	DeviceType     string
	ProblemType    string
	SolutionsShown []string
	Rating         int
	Messages       []Message
}

// HasShown reports whether problemKey was already presented in this session.
func (s TroubleshootingSession) HasShown(problemKey string) bool {
	for _, k := range s.SolutionsShown {
		if k == problemKey {
			return true
		}
	}
	return false
}

// SessionState is either Active(session) or Inactive. The zero value is Inactive.
type SessionState struct {
	session *TroubleshootingSession
}

func ActiveSession(s TroubleshootingSession) SessionState {
	return SessionState{session: &s}
}

func InactiveSession() SessionState {
	return SessionState{}
}

func (st SessionState) Active() bool {
	return st.session != nil
}

// Session returns a copy of the active session; ok is false when inactive.
func (st SessionState) Session() (TroubleshootingSession, bool) {
	if st.session == nil {
		return TroubleshootingSession{}, false
	}
	return *st.session, true
}

// RatingOutcome is emitted only when a troubleshooting session completes with a rating.
type RatingOutcome struct {
	Rating      int
	DeviceType  string
	ProblemType string
}

// SideEffect describes an external action the caller must execute after delivery.
type SideEffect struct {
	Method  string
	Target  User
	Intents Intents
	Params  map[string]any
}

// ImageRef is an image the delivery channel should send before the text replies.
type ImageRef struct {
	Reference string // catalog-relative image reference
	Caption   string
}
