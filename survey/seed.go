package survey

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mbolis/waterlily/model"
)

const demoTitle = "Waterlily Intake"

func demoQuestions() []model.CreateQuestionRequest {
	q := func(text, description string) model.CreateQuestionRequest {
		return model.CreateQuestionRequest{Text: text, Description: &description}
	}
	return []model.CreateQuestionRequest{
		q("How did you discover us?", "Open text"),
		q("Hours per day doing care tasks?", "Number"),
		q("Do you have LTC insurance?", "true/false"),
	}
}

// SeedDemo creates the demo survey when the store holds no surveys at all.
// It reports whether anything was written.
func (s *Service) SeedDemo(ctx context.Context) (seeded bool, err error) {
	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM surveys`)
		if err != nil {
			return fmt.Errorf("survey.seed.count: %w", err)
		}
		if n > 0 {
			return nil
		}

		_, err = insertSurvey(ctx, tx, demoTitle, demoQuestions(), s.timestamp())
		if err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}
