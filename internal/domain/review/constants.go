package review

const (
	StageGoalSetting = "goal_setting"
	StageMidYear     = "mid_year_review"
	StageEndYear     = "end_year_review"

	StatusDraft              = "draft"
	StatusPendingEmployeeSig = "pending_employee_signature"
	StatusEmployeeSigned     = "employee_signed"
	StatusPendingManagerSig  = "pending_manager_signature"
	StatusManagerSigned      = "manager_signed"
	StatusSigned             = "signed"
	StatusArchived           = "archived"

	FieldWhat = "what"
	FieldHow  = "how"

	PartyEmployee = "employee"
	PartyManager  = "manager"
)

var stageOrder = []string{StageGoalSetting, StageMidYear, StageEndYear}

// NextStage returns the stage following the given one, or "" for the last.
func NextStage(stage string) string {
	for i, s := range stageOrder {
		if s == stage && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return ""
}

// IsScoringStage reports whether ratings are written during the stage.
// Goal setting only fixes goals and weights.
func IsScoringStage(stage string) bool {
	return stage == StageMidYear || stage == StageEndYear
}

func ValidStage(stage string) bool {
	for _, s := range stageOrder {
		if s == stage {
			return true
		}
	}
	return false
}
