package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScannerEvent records one retroactive bot flagging by the scanner-pattern detector.
type ScannerEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DetectedAt time.Time          `bson:"detected_at" json:"detected_at"`

	// Address that produced the burst and the survey whose submission triggered the scan
	IPAddress       string `bson:"ip_address" json:"ip_address"`
	TriggerSurveyID string `bson:"trigger_survey_id" json:"trigger_survey_id"`

	// What the window looked like
	WindowSize   int      `bson:"window_size" json:"window_size"`
	SurveyIDs    []string `bson:"survey_ids" json:"survey_ids"`
	AnswerValues []string `bson:"answer_values" json:"answer_values"`

	FlaggedIDs []string `bson:"flagged_ids" json:"flagged_ids"`
}
