package services

import (
	"testing"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAnswerValue(t *testing.T) {
	assert.Equal(t, "very satisfied", FormatAnswerValue("very-satisfied"))
	assert.Equal(t, "yes", FormatAnswerValue("yes"))
}

func TestSummarize(t *testing.T) {
	loc := func(s string) *string { return &s }
	subs := []models.Submission{
		{ID: uuid.New(), AnswerValue: "very-satisfied", Location: loc("Austin, Texas, United States")},
		{ID: uuid.New(), AnswerValue: "very-satisfied", Location: loc("Berlin, Berlin, Germany"), FreeResponse: loc("great")},
		{ID: uuid.New(), AnswerValue: "neutral", Location: loc("Denver, Colorado, United States")},
		{ID: uuid.New(), AnswerValue: "unhappy", RespondentName: loc("Ada")},
		{ID: uuid.New(), AnswerValue: "unhappy", IsSuspectedBot: true, Location: loc("Dublin, Leinster, Ireland")},
	}

	res := Summarize(subs)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 1, res.SuspectedBots)
	assert.Equal(t, 2, res.WithDetails)

	require.Len(t, res.Answers, 3)
	assert.Equal(t, AnswerCount{Value: "very-satisfied", Label: "very satisfied", Count: 2}, res.Answers[0])
	assert.Equal(t, "neutral", res.Answers[1].Value)
	assert.Equal(t, AnswerCount{Value: "unhappy", Label: "unhappy", Count: 1}, res.Answers[2])

	assert.Equal(t, []CountryCount{{Country: "United States", Count: 2}, {Country: "Germany", Count: 1}}, res.Countries)
}

func TestSummarize_Empty(t *testing.T) {
	res := Summarize(nil)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Answers)
	assert.NotNil(t, res.Countries)
}
