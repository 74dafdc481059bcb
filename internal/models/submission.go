package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is one recorded respondent interaction with a survey link.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SurveyID  uuid.UUID `json:"survey_id"`

	// Respondent input
	AnswerValue    string  `json:"answer_value"`
	FreeResponse   *string `json:"free_response"`
	RespondentName *string `json:"respondent_name"`

	// Tracking data (owner views only, never echoed to respondents)
	HashMD5   *string `json:"hash_md5"`
	IPAddress *string `json:"ip_address"`
	UserAgent *string `json:"user_agent"`
	Location  *string `json:"location"`

	IsSuspectedBot bool `json:"is_suspected_bot"`
}

// HasFreeResponse reports whether the respondent left a non-blank comment.
func (s *Submission) HasFreeResponse() bool {
	return s.FreeResponse != nil && strings.TrimSpace(*s.FreeResponse) != ""
}

// HasDetails reports whether a comment or a name has been attached.
func (s *Submission) HasDetails() bool {
	if s.HasFreeResponse() {
		return true
	}
	return s.RespondentName != nil && strings.TrimSpace(*s.RespondentName) != ""
}
