package models

// Role identifies what a user may do within the platform.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleLecturer         Role = "lecturer"
	RoleStudent          Role = "student"
	RoleExaminer         Role = "examiner"
	RoleHeadOfDepartment Role = "head_of_department"
)

// DecodeRole converts the numeric role code used on the wire into a named role.
// Unknown codes decode to the empty role.
func DecodeRole(code int) Role {
	switch code {
	case 0:
		return RoleAdmin
	case 1:
		return RoleLecturer
	case 2:
		return RoleStudent
	case 3:
		return RoleExaminer
	case 4:
		return RoleHeadOfDepartment
	default:
		return ""
	}
}

// SessionStatus reflects the lifecycle of a grading session.
type SessionStatus string

const (
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// DecodeSessionStatus converts the numeric status code used on the wire.
func DecodeSessionStatus(code int) SessionStatus {
	switch code {
	case 0:
		return SessionStatusProcessing
	case 1:
		return SessionStatusCompleted
	case 2:
		return SessionStatusFailed
	default:
		return SessionStatusProcessing
	}
}

// GradingType records who (or what) produced a grading session.
type GradingType string

const (
	GradingTypeAI       GradingType = "ai"
	GradingTypeLecturer GradingType = "lecturer"
	GradingTypeBoth     GradingType = "both"
)

// DecodeGradingType converts the numeric grading type code used on the wire.
func DecodeGradingType(code int) GradingType {
	switch code {
	case 0:
		return GradingTypeAI
	case 1:
		return GradingTypeLecturer
	case 2:
		return GradingTypeBoth
	default:
		return GradingTypeLecturer
	}
}

const (
	// ElementTypePracticalExam marks a course element graded as a practical exam.
	ElementTypePracticalExam = 2
)

// AssignmentTypeLabel classifies a course element for report rows. Element
// type 2 is a practical exam; every other element type is an assignment.
func AssignmentTypeLabel(elementType int) string {
	if elementType == ElementTypePracticalExam {
		return "Practical Exam"
	}
	return "Assignment"
}
