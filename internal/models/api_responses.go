package models

// AnswerRequest is the JSON body accepted by the answer API.
type AnswerRequest struct {
	Message *string `json:"message"` // Required; nil when absent from the body
}

// AnswerResponse contains the result of answering one message.
type AnswerResponse struct {
	Answer    string  `json:"answer"`
	Outcome   string  `json:"outcome"`
	Corrected string  `json:"corrected"`
	Matched   string  `json:"matched,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// AskResponse is the legacy /ask response shape.
type AskResponse struct {
	Status string `json:"status"`
	Answer string `json:"answer"`
}
