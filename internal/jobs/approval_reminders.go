package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/workflow"
)

// ApprovalReminders — напоминает о номинациях, висящих без ответа
// на поданных контрактах дольше age. Одно событие на каждую номинацию;
// антиспам — за счёт суточного интервала запуска.
func ApprovalReminders(database *sql.DB, events workflow.Dispatcher, age time.Duration) Job {
	return func(ctx context.Context) error {
		cutoff := time.Now().Add(-age)

		sups, err := db.ListStaleSupervises(ctx, database, cutoff)
		if err != nil {
			return err
		}
		for i := range sups {
			s := sups[i]
			events.Dispatch(ctx, workflow.Event{
				Kind:      workflow.EventApprovalReminder,
				Contract:  s.Contract,
				Supervise: &s.Supervise,
				At:        time.Now(),
			})
		}

		aes, err := db.ListStaleAssessmentExamines(ctx, database, cutoff)
		if err != nil {
			return err
		}
		for i := range aes {
			ae := aes[i]
			events.Dispatch(ctx, workflow.Event{
				Kind:              workflow.EventApprovalReminder,
				Contract:          ae.Contract,
				AssessmentExamine: &ae.AssessmentExamine,
				At:                time.Now(),
			})
		}
		return nil
	}
}
