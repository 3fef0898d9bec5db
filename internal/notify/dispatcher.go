package notify

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/metrics"
	"github.com/Spok95/student-contracts-backend/internal/models"
	"github.com/Spok95/student-contracts-backend/internal/observability"
	"github.com/Spok95/student-contracts-backend/internal/workflow"
)

// Sink — канал доставки. Ошибка доставки не влияет на переход воркфлоу.
type Sink interface {
	Deliver(ctx context.Context, text string, recipients []models.User) error
}

// Dispatcher — принимает события воркфлоу, резолвит получателей
// и рассылает по всем подключённым каналам.
type Dispatcher struct {
	database *sql.DB
	sinks    []Sink
	log      *zap.SugaredLogger
}

func New(database *sql.DB, log *zap.SugaredLogger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{database: database, sinks: sinks, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev workflow.Event) {
	recipients, err := d.resolve(ctx, ev)
	if err != nil {
		metrics.NotifyErrors.Inc()
		observability.CaptureErr(err)
		d.log.Warnw("не удалось определить получателей", "kind", ev.Kind, "err", err)
		return
	}
	text := render(ev)
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, text, recipients); err != nil {
			metrics.NotifyErrors.Inc()
			observability.CaptureErr(err)
			d.log.Warnw("ошибка доставки уведомления", "kind", ev.Kind, "err", err)
		}
	}
}

// resolve — получатели по виду события: владелец, руководители,
// экзаменаторы, номинаторы — как того требует конкретный переход.
func (d *Dispatcher) resolve(ctx context.Context, ev workflow.Event) ([]models.User, error) {
	var out []models.User
	seen := make(map[int64]struct{})
	add := func(us ...models.User) {
		for _, u := range us {
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			out = append(out, u)
		}
	}
	addByID := func(id int64) error {
		u, err := db.GetUserByID(ctx, d.database, id)
		if err != nil {
			return err
		}
		add(*u)
		return nil
	}

	contractID := ev.Contract.ID

	switch ev.Kind {
	case workflow.EventContractSubmitted:
		sups, err := db.ListSupervisorUsers(ctx, d.database, contractID)
		if err != nil {
			return nil, err
		}
		add(sups...)
		if err := addByID(ev.Contract.OwnerID); err != nil {
			return nil, err
		}

	case workflow.EventContractUnsubmitted, workflow.EventContractApproved:
		if err := addByID(ev.Contract.OwnerID); err != nil {
			return nil, err
		}
		sups, err := db.ListSupervisorUsers(ctx, d.database, contractID)
		if err != nil {
			return nil, err
		}
		add(sups...)
		exs, err := db.ListExaminerUsers(ctx, d.database, contractID)
		if err != nil {
			return nil, err
		}
		add(exs...)

	case workflow.EventContractDisapproved:
		if err := addByID(ev.Contract.OwnerID); err != nil {
			return nil, err
		}
		sups, err := db.ListSupervisorUsers(ctx, d.database, contractID)
		if err != nil {
			return nil, err
		}
		add(sups...)

	case workflow.EventSupervisorApproved, workflow.EventSupervisorDisapproved:
		if err := addByID(ev.Contract.OwnerID); err != nil {
			return nil, err
		}
		if ev.Supervise != nil && ev.Supervise.NominatorID != nil {
			if err := addByID(*ev.Supervise.NominatorID); err != nil {
				return nil, err
			}
		}

	case workflow.EventExaminerApproved, workflow.EventExaminerDisapproved:
		if err := addByID(ev.Contract.OwnerID); err != nil {
			return nil, err
		}
		sups, err := db.ListSupervisorUsers(ctx, d.database, contractID)
		if err != nil {
			return nil, err
		}
		add(sups...)

	case workflow.EventApprovalReminder:
		// получатель зашит в Supervise/AssessmentExamine события
		if ev.Supervise != nil {
			if err := addByID(ev.Supervise.SupervisorID); err != nil {
				return nil, err
			}
		}
		if ev.AssessmentExamine != nil {
			if err := addByID(ev.AssessmentExamine.ExaminerID); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func render(ev workflow.Event) string {
	title := ev.Contract.Payload.Title
	switch ev.Kind {
	case workflow.EventContractSubmitted:
		return fmt.Sprintf("📄 Контракт «%s» подан на согласование (%s).", title, ev.Actor.Name)
	case workflow.EventContractUnsubmitted:
		return fmt.Sprintf("↩️ Подача контракта «%s» отозвана (%s). Все согласия сброшены.", title, ev.Actor.Name)
	case workflow.EventContractApproved:
		return fmt.Sprintf("✅ Контракт «%s» финально утверждён (%s).", title, ev.Actor.Name)
	case workflow.EventContractDisapproved:
		return withMessage(fmt.Sprintf("❌ Контракт «%s» отклонён конвинером (%s).", title, ev.Actor.Name), ev.Message)
	case workflow.EventSupervisorApproved:
		return withMessage(fmt.Sprintf("✅ Руководитель согласовал контракт «%s».", title), ev.Message)
	case workflow.EventSupervisorDisapproved:
		return withMessage(fmt.Sprintf("❌ Руководитель отозвал согласие по контракту «%s».", title), ev.Message)
	case workflow.EventExaminerApproved:
		return withMessage(fmt.Sprintf("✅ Экзаменатор подтвердил назначение по контракту «%s».", title), ev.Message)
	case workflow.EventExaminerDisapproved:
		return withMessage(fmt.Sprintf("❌ Экзаменатор отозвал подтверждение по контракту «%s».", title), ev.Message)
	case workflow.EventApprovalReminder:
		return fmt.Sprintf("⏰ Напоминание: по контракту «%s» есть несогласованные назначения.", title)
	}
	return fmt.Sprintf("Событие %s по контракту «%s».", ev.Kind, title)
}

func withMessage(s, msg string) string {
	if msg == "" {
		return s
	}
	return s + "\nКомментарий: " + msg
}
