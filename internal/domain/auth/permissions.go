package auth

const (
	RoleEmployee    = "employee"
	RoleManager     = "manager"
	RoleHR          = "hr"
	RoleSystemAdmin = "sysadmin"
)

const (
	PermReviewsRead       = "reviews.read"
	PermReviewsWrite      = "reviews.write"
	PermReviewsSign       = "reviews.sign"
	PermReviewsAdvance    = "reviews.advance"
	PermCalibrationManage = "calibration.manage"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermReviewsRead,
	PermReviewsWrite,
	PermReviewsSign,
	PermReviewsAdvance,
	PermCalibrationManage,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsSign,
	},
	RoleManager: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsSign,
		PermReportsRead,
	},
	RoleHR: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsSign,
		PermReviewsAdvance,
		PermCalibrationManage,
		PermReportsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}
