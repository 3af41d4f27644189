package notifications

const (
	TypeReviewCreated      = "review_created"
	TypeSignatureRequested = "signature_requested"
	TypeSignatureReminder  = "signature_reminder"
	TypeReviewSigned       = "review_signed"
	TypeReviewRejected     = "review_rejected"
	TypeStageAdvanced      = "stage_advanced"
	TypeScoreCalibrated    = "score_calibrated"
)
