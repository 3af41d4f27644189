package review

import (
	"errors"
	"testing"
)

func TestNextGoalSettingHappyPath(t *testing.T) {
	steps := []struct {
		status string
		event  string
		want   string
	}{
		{StatusDraft, EventSubmit, StatusPendingManagerSig},
		{StatusPendingManagerSig, EventManagerSign, StatusManagerSigned},
		{StatusManagerSigned, EventRequestCounterSign, StatusPendingEmployeeSig},
		{StatusPendingEmployeeSig, EventEmployeeSign, StatusEmployeeSigned},
	}
	for _, step := range steps {
		got, err := Next(StageGoalSetting, step.status, step.event)
		if err != nil {
			t.Fatalf("Next(%s, %s): %v", step.status, step.event, err)
		}
		if got != step.want {
			t.Fatalf("Next(%s, %s) = %s, want %s", step.status, step.event, got, step.want)
		}
	}
}

func TestNextScoringStagesEmployeeSignsFirst(t *testing.T) {
	for _, stage := range []string{StageMidYear, StageEndYear} {
		got, err := Next(stage, StatusDraft, EventSubmit)
		if err != nil {
			t.Fatalf("%s submit: %v", stage, err)
		}
		if got != StatusPendingEmployeeSig {
			t.Fatalf("%s submit = %s, want %s", stage, got, StatusPendingEmployeeSig)
		}
	}
}

func TestNextRejectWalksBackwards(t *testing.T) {
	got, err := Next(StageMidYear, StatusPendingManagerSig, EventManagerReject)
	if err != nil {
		t.Fatal(err)
	}
	if got != StatusPendingEmployeeSig {
		t.Fatalf("manager reject = %s, want %s", got, StatusPendingEmployeeSig)
	}

	got, err = Next(StageMidYear, StatusPendingEmployeeSig, EventEmployeeReject)
	if err != nil {
		t.Fatal(err)
	}
	if got != StatusDraft {
		t.Fatalf("employee reject = %s, want %s", got, StatusDraft)
	}
}

func TestNextAdvanceStage(t *testing.T) {
	got, err := Next(StageMidYear, StatusSigned, EventAdvanceStage)
	if err != nil {
		t.Fatal(err)
	}
	if got != StatusSigned {
		t.Fatalf("mid-year advance = %s", got)
	}

	got, err = Next(StageEndYear, StatusSigned, EventAdvanceStage)
	if err != nil {
		t.Fatal(err)
	}
	if got != StatusArchived {
		t.Fatalf("end-year advance = %s, want %s", got, StatusArchived)
	}
}

func TestNextIllegalTransition(t *testing.T) {
	cases := []struct {
		stage  string
		status string
		event  string
	}{
		{StageGoalSetting, StatusDraft, EventManagerSign},
		{StageGoalSetting, StatusDraft, EventEmployeeSign},
		{StageMidYear, StatusSigned, EventSubmit},
		{StageEndYear, StatusArchived, EventAdvanceStage},
		{StageMidYear, StatusPendingEmployeeSig, EventManagerSign},
	}
	for _, c := range cases {
		_, err := Next(c.stage, c.status, c.event)
		var transitionErr *InvalidTransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("Next(%s, %s, %s): want InvalidTransitionError, got %v", c.stage, c.status, c.event, err)
		}
		if transitionErr.From != c.status || transitionErr.Event != c.event {
			t.Fatalf("error carries wrong context: %+v", transitionErr)
		}
	}
}

func TestNextStageOrdering(t *testing.T) {
	if got := NextStage(StageGoalSetting); got != StageMidYear {
		t.Fatalf("after goal setting: %s", got)
	}
	if got := NextStage(StageMidYear); got != StageEndYear {
		t.Fatalf("after mid-year: %s", got)
	}
	if got := NextStage(StageEndYear); got != "" {
		t.Fatalf("after end-year: %s", got)
	}
}
