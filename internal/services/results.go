package services

import (
	"sort"
	"strings"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/google/uuid"
)

type AnswerCount struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Results is the dashboard view of a survey. Distributions skip suspected bots.
type Results struct {
	SurveyID      uuid.UUID      `json:"survey_id"`
	Total         int            `json:"total"`
	SuspectedBots int            `json:"suspected_bots"`
	WithDetails   int            `json:"with_details"`
	Answers       []AnswerCount  `json:"answers"`
	Countries     []CountryCount `json:"countries"`
}

// FormatAnswerValue turns a link parameter like "very-satisfied" into "very satisfied".
func FormatAnswerValue(value string) string {
	return strings.ReplaceAll(value, "-", " ")
}

func Summarize(subs []models.Submission) Results {
	res := Results{Answers: []AnswerCount{}, Countries: []CountryCount{}}
	answers := make(map[string]int)
	countries := make(map[string]int)

	for i := range subs {
		s := &subs[i]
		if s.IsSuspectedBot {
			res.SuspectedBots++
			continue
		}
		res.Total++
		if s.HasDetails() {
			res.WithDetails++
		}
		answers[s.AnswerValue]++
		if s.Location != nil {
			if c := CountryOf(*s.Location); c != "" {
				countries[c]++
			}
		}
	}

	for v, n := range answers {
		res.Answers = append(res.Answers, AnswerCount{Value: v, Label: FormatAnswerValue(v), Count: n})
	}
	sort.Slice(res.Answers, func(i, j int) bool {
		if res.Answers[i].Count != res.Answers[j].Count {
			return res.Answers[i].Count > res.Answers[j].Count
		}
		return res.Answers[i].Value < res.Answers[j].Value
	})

	for c, n := range countries {
		res.Countries = append(res.Countries, CountryCount{Country: c, Count: n})
	}
	sort.Slice(res.Countries, func(i, j int) bool {
		if res.Countries[i].Count != res.Countries[j].Count {
			return res.Countries[i].Count > res.Countries[j].Count
		}
		return res.Countries[i].Country < res.Countries[j].Country
	})
	return res
}
