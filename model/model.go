package model

// TimeLayout is the ISO-8601 form used for every stored timestamp. Values
// sort lexically in chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Survey struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	CreatedAt string     `json:"createdAt" db:"created_at"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID          string  `json:"id" db:"id"`
	Text        string  `json:"text" db:"text"`
	Description *string `json:"description,omitempty" db:"description"`
}

// Answers maps a question id to a string, float64 or bool value.
type Answers map[string]any

type ResponseItem struct {
	ID          string  `json:"id"`
	SurveyID    string  `json:"surveyId"`
	Answers     Answers `json:"answers"`
	SubmittedAt string  `json:"submittedAt"`
}
