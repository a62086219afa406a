package models

// QARecord is a single stored question/answer pair.
type QARecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
