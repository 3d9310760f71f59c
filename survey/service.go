// Package survey stores survey definitions and collects responses to them.
package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mbolis/waterlily/database"
	"github.com/mbolis/waterlily/ident"
	"github.com/mbolis/waterlily/model"
)

// AnonymousRespondent is stored as the respondent of every response unless
// respondent recording is enabled.
const AnonymousRespondent = "demo-user"

type Service struct {
	db               *database.DB
	recordRespondent bool

	now func() time.Time
}

// NewService returns a survey service. With recordRespondent set, responses
// keep the id of the authenticated user who submitted them.
func NewService(db *database.DB, recordRespondent bool) *Service {
	return &Service{
		db:               db,
		recordRespondent: recordRespondent,
		now:              time.Now,
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(model.TimeLayout)
}

// Create stores the survey and its questions in one transaction and returns
// it with the generated ids.
func (s *Service) Create(ctx context.Context, req model.CreateSurveyRequest) (survey model.Survey, err error) {
	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		survey, err = insertSurvey(ctx, tx, req.Title, req.Questions, s.timestamp())
		return err
	})
	if err != nil {
		return model.Survey{}, err
	}
	return survey, nil
}

func insertSurvey(ctx context.Context, tx *sqlx.Tx, title string, questions []model.CreateQuestionRequest, createdAt string) (model.Survey, error) {
	survey := model.Survey{
		ID:        ident.New(),
		Title:     title,
		CreatedAt: createdAt,
		Questions: make([]model.Question, 0, len(questions)),
	}

	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO surveys (id, title, created_at) VALUES (?, ?, ?)`),
		survey.ID,
		survey.Title,
		survey.CreatedAt,
	)
	if err != nil {
		return survey, fmt.Errorf("survey.create.insert_survey: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO questions (id, survey_id, position, text, description)
		VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return survey, fmt.Errorf("survey.create.questions.prepare: %w", err)
	}
	defer stmt.Close()

	for i, q := range questions {
		question := model.Question{ID: ident.New(), Text: q.Text, Description: q.Description}
		_, err = stmt.ExecContext(ctx, question.ID, survey.ID, i, question.Text, question.Description)
		if err != nil {
			return survey, fmt.Errorf("survey.create.questions.insert: %w", err)
		}
		survey.Questions = append(survey.Questions, question)
	}

	return survey, nil
}

// List returns every survey, newest first, with its questions in the order
// they were created.
func (s *Service) List(ctx context.Context) ([]model.Survey, error) {
	surveys := []model.Survey{}
	err := s.db.SelectContext(ctx, &surveys, `
		SELECT id, title, created_at
		FROM surveys
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("survey.list.surveys: %w", err)
	}

	var rows []struct {
		SurveyID string `db:"survey_id"`
		model.Question
	}
	err = s.db.SelectContext(ctx, &rows, `
		SELECT survey_id, id, text, description
		FROM questions
		ORDER BY survey_id, position`)
	if err != nil {
		return nil, fmt.Errorf("survey.list.questions: %w", err)
	}

	bySurvey := make(map[string][]model.Question, len(surveys))
	for _, row := range rows {
		bySurvey[row.SurveyID] = append(bySurvey[row.SurveyID], row.Question)
	}
	for i := range surveys {
		surveys[i].Questions = bySurvey[surveys[i].ID]
		if surveys[i].Questions == nil {
			surveys[i].Questions = []model.Question{}
		}
	}

	return surveys, nil
}

// Get returns the survey with the given id. found is false when there is no
// such survey.
func (s *Service) Get(ctx context.Context, id string) (survey model.Survey, found bool, err error) {
	err = s.db.GetContext(ctx, &survey, s.db.Rebind(`
		SELECT id, title, created_at FROM surveys WHERE id = ?`),
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, false, nil
	}
	if err != nil {
		return model.Survey{}, false, fmt.Errorf("survey.get: %w", err)
	}

	survey.Questions = []model.Question{}
	err = s.db.SelectContext(ctx, &survey.Questions, s.db.Rebind(`
		SELECT id, text, description
		FROM questions
		WHERE survey_id = ?
		ORDER BY position`),
		id,
	)
	if err != nil {
		return model.Survey{}, false, fmt.Errorf("survey.get.questions: %w", err)
	}

	return survey, true, nil
}

func surveyExists(ctx context.Context, q sqlx.ExtContext, id string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind(`
		SELECT COUNT(*) FROM surveys WHERE id = ?`),
		id,
	)
	return n > 0, err
}

// SubmitResponse records an answer set for an existing survey. Every answer
// must be keyed by the id of one of the survey's questions.
func (s *Service) SubmitResponse(ctx context.Context, req model.SubmitResponseRequest, respondentID string) (item model.ResponseItem, err error) {
	answers := req.Answers
	if answers == nil {
		answers = model.Answers{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return item, fmt.Errorf("survey.submit.encode_answers: %w", err)
	}

	userID := AnonymousRespondent
	if s.recordRespondent && respondentID != "" {
		userID = respondentID
	}

	item = model.ResponseItem{
		ID:          ident.New(),
		SurveyID:    req.SurveyID,
		Answers:     answers,
		SubmittedAt: s.timestamp(),
	}

	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := surveyExists(ctx, tx, req.SurveyID)
		if err != nil {
			return fmt.Errorf("survey.submit.survey_exists: %w", err)
		}
		if !exists {
			return model.ErrSurveyNotFound()
		}

		var questionIDs []string
		err = tx.SelectContext(ctx, &questionIDs, tx.Rebind(`
			SELECT id FROM questions WHERE survey_id = ?`),
			req.SurveyID,
		)
		if err != nil {
			return fmt.Errorf("survey.submit.questions: %w", err)
		}

		err = checkAnswerKeys(answers, questionIDs)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO responses (id, user_id, survey_id, submitted_at, answers_json)
			VALUES (?, ?, ?, ?, ?)`),
			item.ID,
			userID,
			item.SurveyID,
			item.SubmittedAt,
			string(answersJSON),
		)
		if err != nil {
			return fmt.Errorf("survey.submit.insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.ResponseItem{}, err
	}

	return item, nil
}

// checkAnswerKeys reports every answer keyed by something other than one of
// questionIDs, in key order.
func checkAnswerKeys(answers model.Answers, questionIDs []string) error {
	known := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		known[id] = true
	}

	var unknown []string
	for key := range answers {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	issues := make([]model.Issue, len(unknown))
	for i, key := range unknown {
		issues[i] = model.Issue{Path: []any{"answers", key}, Message: "unknown question id"}
	}
	return model.ErrValidation(issues...)
}

// ListResponses returns the responses to a survey, newest first.
func (s *Service) ListResponses(ctx context.Context, surveyID string) ([]model.ResponseItem, error) {
	exists, err := surveyExists(ctx, s.db, surveyID)
	if err != nil {
		return nil, fmt.Errorf("survey.responses.survey_exists: %w", err)
	}
	if !exists {
		return nil, model.ErrSurveyNotFound()
	}

	var rows []struct {
		ID          string `db:"id"`
		SurveyID    string `db:"survey_id"`
		SubmittedAt string `db:"submitted_at"`
		AnswersJSON string `db:"answers_json"`
	}
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, survey_id, submitted_at, answers_json
		FROM responses
		WHERE survey_id = ?
		ORDER BY submitted_at DESC, id DESC`),
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("survey.responses.select: %w", err)
	}

	items := make([]model.ResponseItem, 0, len(rows))
	for _, row := range rows {
		item := model.ResponseItem{
			ID:          row.ID,
			SurveyID:    row.SurveyID,
			SubmittedAt: row.SubmittedAt,
		}
		err = json.Unmarshal([]byte(row.AnswersJSON), &item.Answers)
		if err != nil {
			return nil, fmt.Errorf("survey.responses.decode_answers %s: %w", row.ID, err)
		}
		items = append(items, item)
	}

	return items, nil
}
