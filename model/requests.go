package model

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type CreateSurveyRequest struct {
	Title     string                  `json:"title" validate:"required"`
	Questions []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	Text        string  `json:"text" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type SubmitResponseRequest struct {
	SurveyID string  `json:"surveyId" validate:"required"`
	Answers  Answers `json:"answers" validate:"required,dive,answer"`
}
