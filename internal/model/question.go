package model

// AnswerRole names one of the two answer slots on a daily question.
// The relationship creator answers as RoleSelf, the linked partner as RolePartner.
type AnswerRole string

const (
	RoleSelf    AnswerRole = "self"
	RolePartner AnswerRole = "partner"
)

func (r AnswerRole) Valid() bool {
	return r == RoleSelf || r == RolePartner
}

type DailyQuestion struct {
	ID             int64   `json:"id"`
	RelationshipID int64   `json:"relationship_id"`
	Question       string  `json:"question"`
	UserAnswer     *string `json:"user_answer"`
	PartnerAnswer  *string `json:"partner_answer"`
	Date           string  `json:"date"`
	IsAnswered     bool    `json:"is_answered"`
}

// BothAnswered reports whether both slots hold a non-empty answer.
func (q *DailyQuestion) BothAnswered() bool {
	return q.UserAnswer != nil && *q.UserAnswer != "" &&
		q.PartnerAnswer != nil && *q.PartnerAnswer != ""
}
