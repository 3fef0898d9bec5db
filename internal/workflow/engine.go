package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/ctxutil"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/metrics"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// Engine — машина состояний контракта. Каждый переход — одна транзакция
// с блокировкой строки контракта (SELECT ... FOR UPDATE): конкурирующие
// переходы по одному контракту сериализуются, разные контракты независимы.
type Engine struct {
	database *sql.DB
	events   Dispatcher
	log      *zap.SugaredLogger
}

func NewEngine(database *sql.DB, events Dispatcher, log *zap.SugaredLogger) *Engine {
	return &Engine{database: database, events: events, log: log}
}

// emit — после коммита, в отдельной горутине. Доставка не влияет на переход.
func (e *Engine) emit(ev Event) {
	if e.events == nil {
		return
	}
	ev.At = time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e.events.Dispatch(ctx, ev)
	}()
}

func (e *Engine) begin(ctx context.Context) (*sql.Tx, error) {
	return e.database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func observe(action string, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = "error"
	}
	metrics.WorkflowTransitions.WithLabelValues(action, outcome).Inc()
}

// Submit — Draft → Submitted. Требуется хотя бы один номинированный
// руководитель; повторная подача запрещена.
func (e *Engine) Submit(ctx context.Context, actor *models.User, contractID int64) (c *models.Contract, err error) {
	defer observe("submit", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	contract, err := db.GetContractForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.ContractSubmit, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if !contract.IsDraft() {
		return nil, fmt.Errorf("контракт уже подан: %w", apperr.ErrForbidden)
	}
	n, err := db.CountSupervises(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("нельзя подать контракт без руководителя: %w", apperr.ErrPrecondition)
	}

	now := time.Now().UTC()
	if err := db.SetSubmitDate(ctx, tx, contractID, &now); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractSubmit,
		ContractID: &contractID, TargetKind: "contract", TargetID: contractID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	contract.SubmitDate = &now
	e.emit(Event{Kind: EventContractSubmitted, Contract: *contract, Actor: *actor})
	return contract, nil
}

// Unsubmit — Submitted → Draft, только суперпользователь. Согласия
// руководителей и экзаменаторов давались по поданному документу,
// поэтому сбрасываются той же транзакцией.
func (e *Engine) Unsubmit(ctx context.Context, actor *models.User, contractID int64) (c *models.Contract, err error) {
	defer observe("unsubmit", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if !actor.IsSuperuser {
		return nil, fmt.Errorf("отзыв подачи доступен только суперпользователю: %w", apperr.ErrForbidden)
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	contract, err := db.GetContractForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("контракт не в состоянии «подан»: %w", apperr.ErrForbidden)
	}

	if err := db.SetSubmitDate(ctx, tx, contractID, nil); err != nil {
		return nil, err
	}
	if err := db.ResetContractApprovals(ctx, tx, contractID); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractUnsubmit,
		ContractID: &contractID, TargetKind: "contract", TargetID: contractID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	contract.SubmitDate = nil
	e.emit(Event{Kind: EventContractUnsubmitted, Contract: *contract, Actor: *actor})
	return contract, nil
}

// ApproveSupervise — согласие руководителя. Одноразово за цикл подачи:
// повторное согласие по уже согласованной номинации запрещено.
func (e *Engine) ApproveSupervise(ctx context.Context, actor *models.User, superviseID int64, message string) (s *models.Supervise, err error) {
	defer observe("supervise_approve", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sup, err := db.GetSuperviseByID(ctx, tx, superviseID)
	if err != nil {
		return nil, err
	}
	contract, err := db.GetContractForUpdate(ctx, tx, sup.ContractID)
	if err != nil {
		return nil, err
	}
	// перечитываем под блокировкой контракта
	sup, err = db.GetSuperviseByID(ctx, tx, superviseID)
	if err != nil {
		return nil, err
	}

	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, sup.SupervisorID, 0)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.SuperviseApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("согласовывать можно только поданный контракт: %w", apperr.ErrForbidden)
	}
	if sup.IsApproved() {
		return nil, fmt.Errorf("номинация уже согласована: %w", apperr.ErrForbidden)
	}

	now := time.Now().UTC()
	if err := db.SetSuperviseApproval(ctx, tx, superviseID, &now); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionSuperviseApprove,
		ContractID: &contract.ID, TargetKind: "supervise", TargetID: superviseID,
		Message: optMessage(message),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sup.SupervisorApprovalDate = &now
	e.emit(Event{Kind: EventSupervisorApproved, Contract: *contract, Actor: *actor, Supervise: sup, Message: message})
	return sup, nil
}

// DisapproveSupervise — отзыв согласия (сброс даты). Открывает новый цикл:
// после отказа номинацию можно согласовать заново.
func (e *Engine) DisapproveSupervise(ctx context.Context, actor *models.User, superviseID int64, message string) (s *models.Supervise, err error) {
	defer observe("supervise_disapprove", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sup, err := db.GetSuperviseByID(ctx, tx, superviseID)
	if err != nil {
		return nil, err
	}
	contract, err := db.GetContractForUpdate(ctx, tx, sup.ContractID)
	if err != nil {
		return nil, err
	}
	sup, err = db.GetSuperviseByID(ctx, tx, superviseID)
	if err != nil {
		return nil, err
	}

	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, sup.SupervisorID, 0)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.SuperviseApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("отзыв согласия возможен только по поданному контракту: %w", apperr.ErrForbidden)
	}
	if !sup.IsApproved() {
		return nil, fmt.Errorf("номинация и так не согласована: %w", apperr.ErrForbidden)
	}

	if err := db.SetSuperviseApproval(ctx, tx, superviseID, nil); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionSuperviseDisapprove,
		ContractID: &contract.ID, TargetKind: "supervise", TargetID: superviseID,
		Message: optMessage(message),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sup.SupervisorApprovalDate = nil
	e.emit(Event{Kind: EventSupervisorDisapproved, Contract: *contract, Actor: *actor, Supervise: sup, Message: message})
	return sup, nil
}

// ApproveAssessmentExamine — подтверждение экзаменатора. Доступно только
// после согласия всех руководителей контракта.
func (e *Engine) ApproveAssessmentExamine(ctx context.Context, actor *models.User, aeID int64, message string) (ae *models.AssessmentExamine, err error) {
	defer observe("examine_approve", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row, err := db.GetAssessmentExamineByID(ctx, tx, aeID)
	if err != nil {
		return nil, err
	}
	contract, err := db.GetContractForUpdate(ctx, tx, row.ContractID)
	if err != nil {
		return nil, err
	}
	row, err = db.GetAssessmentExamineByID(ctx, tx, aeID)
	if err != nil {
		return nil, err
	}

	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, 0, row.ExaminerID)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.AssessmentExamineApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("подтверждать можно только по поданному контракту: %w", apperr.ErrForbidden)
	}
	pendingSup, err := db.CountPendingSupervises(ctx, tx, contract.ID)
	if err != nil {
		return nil, err
	}
	total, err := db.CountSupervises(ctx, tx, contract.ID)
	if err != nil {
		return nil, err
	}
	if total == 0 || pendingSup > 0 {
		return nil, fmt.Errorf("экзаменатор действует после согласия руководителей: %w", apperr.ErrForbidden)
	}
	if row.IsApproved() {
		return nil, fmt.Errorf("назначение уже подтверждено: %w", apperr.ErrForbidden)
	}

	now := time.Now().UTC()
	if err := db.SetAssessmentExamineApproval(ctx, tx, aeID, &now); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionExamineApprove,
		ContractID: &contract.ID, TargetKind: "assessment_examine", TargetID: aeID,
		Message: optMessage(message),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	row.ExaminerApprovalDate = &now
	e.emit(Event{Kind: EventExaminerApproved, Contract: *contract, Actor: *actor, AssessmentExamine: row, Message: message})
	return row, nil
}

// DisapproveAssessmentExamine — отзыв подтверждения экзаменатора.
func (e *Engine) DisapproveAssessmentExamine(ctx context.Context, actor *models.User, aeID int64, message string) (ae *models.AssessmentExamine, err error) {
	defer observe("examine_disapprove", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row, err := db.GetAssessmentExamineByID(ctx, tx, aeID)
	if err != nil {
		return nil, err
	}
	contract, err := db.GetContractForUpdate(ctx, tx, row.ContractID)
	if err != nil {
		return nil, err
	}
	row, err = db.GetAssessmentExamineByID(ctx, tx, aeID)
	if err != nil {
		return nil, err
	}

	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, 0, row.ExaminerID)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.AssessmentExamineApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("отзыв подтверждения возможен только по поданному контракту: %w", apperr.ErrForbidden)
	}
	if !row.IsApproved() {
		return nil, fmt.Errorf("назначение и так не подтверждено: %w", apperr.ErrForbidden)
	}

	if err := db.SetAssessmentExamineApproval(ctx, tx, aeID, nil); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionExamineDisapprove,
		ContractID: &contract.ID, TargetKind: "assessment_examine", TargetID: aeID,
		Message: optMessage(message),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	row.ExaminerApprovalDate = nil
	e.emit(Event{Kind: EventExaminerDisapproved, Contract: *contract, Actor: *actor, AssessmentExamine: row, Message: message})
	return row, nil
}

// FinalApprove — финальное утверждение конвинером. Требует: контракт подан,
// все номинации руководителей согласованы, каждое оценивание имеет хотя бы
// одно подтверждённое назначение и ни одно назначение не висит без
// подтверждения. Конвинер фиксируется в контракте.
func (e *Engine) FinalApprove(ctx context.Context, actor *models.User, contractID int64) (c *models.Contract, err error) {
	defer observe("final_approve", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	contract, err := db.GetContractForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.ContractFinalApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	// неподанный контракт — нарушение предусловия, не прав
	if !contract.IsSubmitted() {
		return nil, fmt.Errorf("контракт не подан: %w", apperr.ErrPrecondition)
	}

	totalSup, err := db.CountSupervises(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	pendingSup, err := db.CountPendingSupervises(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if totalSup == 0 || pendingSup > 0 {
		return nil, fmt.Errorf("не все руководители согласовали контракт: %w", apperr.ErrPrecondition)
	}
	pendingAE, err := db.CountPendingAssessmentExamines(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if pendingAE > 0 {
		return nil, fmt.Errorf("не все экзаменаторы подтвердили назначения: %w", apperr.ErrPrecondition)
	}
	unexamined, err := db.CountUnexaminedAssessments(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if unexamined > 0 {
		return nil, fmt.Errorf("есть оценивания без подтверждённого экзаменатора: %w", apperr.ErrPrecondition)
	}

	now := time.Now().UTC()
	if err := db.SetConvenerApproval(ctx, tx, contractID, &actor.ID, &now); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractApprove,
		ContractID: &contractID, TargetKind: "contract", TargetID: contractID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	contract.ConvenerID = &actor.ID
	contract.ConvenerApprovalDate = &now
	e.emit(Event{Kind: EventContractApproved, Contract: *contract, Actor: *actor})
	return contract, nil
}

// FinalDisapprove — отказ конвинера: снимает финальное утверждение
// (если было) и возвращает контракт на доработку с комментарием.
func (e *Engine) FinalDisapprove(ctx context.Context, actor *models.User, contractID int64, message string) (c *models.Contract, err error) {
	defer observe("final_disapprove", &err)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	contract, err := db.GetContractForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	rel, err := auth.LoadRelation(ctx, tx, contract, actor.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, auth.ContractFinalApprove, auth.MetaOf(contract)) {
		return nil, apperr.ErrForbidden
	}
	if contract.IsDraft() {
		return nil, fmt.Errorf("контракт не подан: %w", apperr.ErrPrecondition)
	}

	if err := db.SetConvenerApproval(ctx, tx, contractID, nil, nil); err != nil {
		return nil, err
	}
	if err := db.AppendActivity(ctx, tx, models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractDisapprove,
		ContractID: &contractID, TargetKind: "contract", TargetID: contractID,
		Message: optMessage(message),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	contract.ConvenerID = nil
	contract.ConvenerApprovalDate = nil
	e.emit(Event{Kind: EventContractDisapproved, Contract: *contract, Actor: *actor, Message: message})
	return contract, nil
}

func optMessage(msg string) *string {
	if msg == "" {
		return nil
	}
	return &msg
}
