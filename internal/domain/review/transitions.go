package review

// Lifecycle events. EventRequestCounterSign is an internal step the service
// applies right after a signature when the counterpart still has to sign.
const (
	EventSubmit             = "submit"
	EventEmployeeSign       = "employee_sign"
	EventManagerSign        = "manager_sign"
	EventEmployeeReject     = "employee_reject"
	EventManagerReject      = "manager_reject"
	EventRequestCounterSign = "request_counter_signature"
	EventAdvanceStage       = "advance_stage"
)

type transitionKey struct {
	stage  string
	status string
	event  string
}

// transitions is the full from-state x event table. Any (stage, status,
// event) triple not present here is an illegal transition.
var transitions = map[transitionKey]string{
	// Goal setting: the manager counter-signs the plan first, then the
	// employee. Rejections walk the flow backwards one step.
	{StageGoalSetting, StatusDraft, EventSubmit}:                          StatusPendingManagerSig,
	{StageGoalSetting, StatusPendingManagerSig, EventManagerSign}:         StatusManagerSigned,
	{StageGoalSetting, StatusPendingManagerSig, EventManagerReject}:       StatusDraft,
	{StageGoalSetting, StatusManagerSigned, EventRequestCounterSign}:      StatusPendingEmployeeSig,
	{StageGoalSetting, StatusPendingEmployeeSig, EventEmployeeSign}:       StatusEmployeeSigned,
	{StageGoalSetting, StatusPendingEmployeeSig, EventEmployeeReject}:     StatusPendingManagerSig,
	{StageGoalSetting, StatusEmployeeSigned, EventRequestCounterSign}:     StatusPendingManagerSig,
	{StageGoalSetting, StatusSigned, EventAdvanceStage}:                   StatusSigned,

	// Mid-year scoring: the employee signs first, then the manager.
	{StageMidYear, StatusDraft, EventSubmit}:                      StatusPendingEmployeeSig,
	{StageMidYear, StatusPendingEmployeeSig, EventEmployeeSign}:   StatusEmployeeSigned,
	{StageMidYear, StatusPendingEmployeeSig, EventEmployeeReject}: StatusDraft,
	{StageMidYear, StatusEmployeeSigned, EventRequestCounterSign}: StatusPendingManagerSig,
	{StageMidYear, StatusPendingManagerSig, EventManagerSign}:     StatusManagerSigned,
	{StageMidYear, StatusPendingManagerSig, EventManagerReject}:   StatusPendingEmployeeSig,
	{StageMidYear, StatusManagerSigned, EventRequestCounterSign}:  StatusPendingEmployeeSig,
	{StageMidYear, StatusSigned, EventAdvanceStage}:               StatusSigned,

	// End-year scoring mirrors mid-year; advancing archives the record.
	{StageEndYear, StatusDraft, EventSubmit}:                      StatusPendingEmployeeSig,
	{StageEndYear, StatusPendingEmployeeSig, EventEmployeeSign}:   StatusEmployeeSigned,
	{StageEndYear, StatusPendingEmployeeSig, EventEmployeeReject}: StatusDraft,
	{StageEndYear, StatusEmployeeSigned, EventRequestCounterSign}: StatusPendingManagerSig,
	{StageEndYear, StatusPendingManagerSig, EventManagerSign}:     StatusManagerSigned,
	{StageEndYear, StatusPendingManagerSig, EventManagerReject}:   StatusPendingEmployeeSig,
	{StageEndYear, StatusManagerSigned, EventRequestCounterSign}:  StatusPendingEmployeeSig,
	{StageEndYear, StatusSigned, EventAdvanceStage}:               StatusArchived,
}

// Next resolves the target status for an event, or an
// InvalidTransitionError when the event is not legal from the current status.
func Next(stage, status, event string) (string, error) {
	next, ok := transitions[transitionKey{stage: stage, status: status, event: event}]
	if !ok {
		return "", &InvalidTransitionError{Stage: stage, From: status, Event: event}
	}
	return next, nil
}

// signEvent maps a signing party onto its lifecycle event.
func signEvent(party string) string {
	if party == PartyManager {
		return EventManagerSign
	}
	return EventEmployeeSign
}

func rejectEvent(party string) string {
	if party == PartyManager {
		return EventManagerReject
	}
	return EventEmployeeReject
}
