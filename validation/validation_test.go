package validation

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/waterlily/model"
)

func requireIssues(t *testing.T, err error) []model.Issue {
	t.Helper()
	var appErr *model.Error
	require.True(t, errors.As(err, &appErr), "expected *model.Error, got %v", err)
	require.Equal(t, model.CodeValidation, appErr.Code)
	return appErr.Issues
}

func TestBindCreateSurvey(t *testing.T) {
	var req model.CreateSurveyRequest
	err := Bind(strings.NewReader(`{"title":"T","questions":[{"text":"Q1"},{"text":"Q2","description":"d"}]}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "T", req.Title)
	require.Len(t, req.Questions, 2)
	assert.Nil(t, req.Questions[0].Description)
	require.NotNil(t, req.Questions[1].Description)
	assert.Equal(t, "d", *req.Questions[1].Description)
}

func TestBindCreateSurveyIssues(t *testing.T) {
	tests := []struct {
		name string
		body string
		path []any
		msg  string
	}{
		{"missing title", `{"questions":[{"text":"Q"}]}`, []any{"title"}, "title is required"},
		{"empty title", `{"title":"","questions":[{"text":"Q"}]}`, []any{"title"}, "title is required"},
		{"no questions field", `{"title":"T"}`, []any{"questions"}, "questions is required"},
		{"empty questions", `{"title":"T","questions":[]}`, []any{"questions"}, "questions must contain at least 1 item(s)"},
		{"empty question text", `{"title":"T","questions":[{"text":"Q"},{"text":""}]}`, []any{"questions", 1, "text"}, "text is required"},
		{"wrong type", `{"title":5,"questions":[{"text":"Q"}]}`, []any{"title"}, "title must be of type string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.CreateSurveyRequest
			issues := requireIssues(t, Bind(strings.NewReader(tt.body), &req))
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
			assert.Equal(t, tt.msg, issues[0].Message)
		})
	}
}

func TestBindMalformedBody(t *testing.T) {
	for _, body := range []string{"", "{", "not json", "[]"} {
		var req model.CreateSurveyRequest
		issues := requireIssues(t, Bind(strings.NewReader(body), &req))
		require.Len(t, issues, 1, "body %q", body)
		assert.Empty(t, issues[0].Path)
	}
}

func TestBindSubmitResponse(t *testing.T) {
	var req model.SubmitResponseRequest
	err := Bind(strings.NewReader(`{"surveyId":"s1","answers":{"a":"hello","b":4.5,"c":true}}`), &req)
	require.NoError(t, err)

	assert.Equal(t, model.Answers{"a": "hello", "b": 4.5, "c": true}, req.Answers)
}

func TestBindSubmitResponseAllowsEmptyAnswers(t *testing.T) {
	var req model.SubmitResponseRequest
	require.NoError(t, Bind(strings.NewReader(`{"surveyId":"s1","answers":{}}`), &req))
}

func TestBindSubmitResponseIssues(t *testing.T) {
	tests := []struct {
		name string
		body string
		path []any
	}{
		{"missing survey id", `{"answers":{}}`, []any{"surveyId"}},
		{"missing answers", `{"surveyId":"s1"}`, []any{"answers"}},
		{"object answer", `{"surveyId":"s1","answers":{"q1":{"x":1}}}`, []any{"answers", "q1"}},
		{"array answer", `{"surveyId":"s1","answers":{"q1":[1,2]}}`, []any{"answers", "q1"}},
		{"null answer", `{"surveyId":"s1","answers":{"q1":null}}`, []any{"answers", "q1"}},
		{"dotted key", `{"surveyId":"s1","answers":{"a.b":[1]}}`, []any{"answers", "a.b"}},
		{"numeric key", `{"surveyId":"s1","answers":{"7":[1]}}`, []any{"answers", "7"}},
		{"bracketed key", `{"surveyId":"s1","answers":{"x[0]":[1]}}`, []any{"answers", "x[0]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.SubmitResponseRequest
			issues := requireIssues(t, Bind(strings.NewReader(tt.body), &req))
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestCredentials(t *testing.T) {
	assert.NoError(t, Struct(&model.Credentials{Email: "a@example.com", Password: "secret1"}))

	issues := requireIssues(t, Struct(&model.Credentials{Email: "nope", Password: "123"}))
	require.Len(t, issues, 2)
	assert.Equal(t, []any{"email"}, issues[0].Path)
	assert.Equal(t, "invalid email address", issues[0].Message)
	assert.Equal(t, []any{"password"}, issues[1].Path)
	assert.Equal(t, "password must contain at least 6 characters", issues[1].Message)
}

func TestIssuePath(t *testing.T) {
	surveyReq := reflect.TypeOf(&model.CreateSurveyRequest{})
	submitReq := reflect.TypeOf(&model.SubmitResponseRequest{})

	tests := []struct {
		root      reflect.Type
		namespace string
		want      []any
	}{
		{surveyReq, "CreateSurveyRequest.questions[2].text", []any{"questions", 2, "text"}},
		{surveyReq, "CreateSurveyRequest.title", []any{"title"}},
		{submitReq, "SubmitResponseRequest.answers[abc-1]", []any{"answers", "abc-1"}},
		{submitReq, "SubmitResponseRequest.answers[7]", []any{"answers", "7"}},
		{submitReq, "SubmitResponseRequest.answers[a.b]", []any{"answers", "a.b"}},
		{submitReq, "SubmitResponseRequest.answers[a]b]", []any{"answers", "a]b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, issuePath(tt.root, tt.namespace), tt.namespace)
	}
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, []any{"questions", 0, "text"}, fieldPath("questions.0.text"))
	assert.Equal(t, []any{"title"}, fieldPath("title"))
}
