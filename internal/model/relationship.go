package model

import "time"

// LinkState tags a relationship by whether its second participant slot is filled.
type LinkState string

const (
	Unlinked LinkState = "unlinked"
	Linked   LinkState = "linked"
)

type Relationship struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	PartnerUserID *int64    `json:"partner_user_id"`
	PartnerName   string    `json:"partner_name"`
	PartnerCode   string    `json:"partner_code"`
	Anniversary   string    `json:"anniversary"`
	Description   *string   `json:"description"`
	Status        LinkState `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewRelationship carries the fields a creator supplies when starting a relationship.
type NewRelationship struct {
	PartnerName string
	Anniversary string
	Description *string
}

// State derives the link state from the write-once partner id.
func (r *Relationship) State() LinkState {
	if r.PartnerUserID == nil {
		return Unlinked
	}
	return Linked
}

// HasMember reports whether userID is the creator or the linked partner.
func (r *Relationship) HasMember(userID int64) bool {
	if r.UserID == userID {
		return true
	}
	return r.PartnerUserID != nil && *r.PartnerUserID == userID
}
