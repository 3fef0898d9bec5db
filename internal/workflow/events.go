package workflow

import (
	"context"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/models"
)

// EventKind — тип события воркфлоу.
type EventKind string

const (
	EventContractSubmitted     EventKind = "contract_submitted"
	EventContractUnsubmitted   EventKind = "contract_unsubmitted"
	EventContractApproved      EventKind = "contract_approved"
	EventContractDisapproved   EventKind = "contract_disapproved"
	EventSupervisorApproved    EventKind = "supervisor_approved"
	EventSupervisorDisapproved EventKind = "supervisor_disapproved"
	EventExaminerApproved      EventKind = "examiner_approved"
	EventExaminerDisapproved   EventKind = "examiner_disapproved"
	// Напоминание о зависших согласованиях; порождается фоновой задачей,
	// а не переходом.
	EventApprovalReminder EventKind = "approval_reminder"
)

// Event — явный объект события вместо сигналов/слушателей: переход
// завершился — событие отдано диспетчеру. Успех перехода не зависит
// от доставки уведомления.
type Event struct {
	Kind              EventKind
	Contract          models.Contract
	Actor             models.User
	Supervise         *models.Supervise
	AssessmentExamine *models.AssessmentExamine
	Message           string
	At                time.Time
}

// Dispatcher — получатель событий (рассылка уведомлений).
// Вызывается после коммита; ошибки доставки переход не откатывают.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}
