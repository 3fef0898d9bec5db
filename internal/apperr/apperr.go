package apperr

import "errors"

// Единый набор ошибок ядра. Слои выше различают их через errors.Is
// и переводят в HTTP-статусы; тексты конкретных случаев добавляются
// обёртыванием (fmt.Errorf("...: %w", ErrForbidden)).
var (
	// Действие запрещено актору или выполняется из недопустимого состояния.
	ErrForbidden = errors.New("доступ запрещён")
	// Структурное предусловие не выполнено (нет руководителя, балл вне диапазона и т.п.).
	ErrPrecondition = errors.New("предусловие не выполнено")
	// Сущность не найдена. Не раскрываем, существует ли она на самом деле.
	ErrNotFound = errors.New("не найдено")
	// Нарушение уникальности: повторная номинация, дубль назначения.
	ErrConflict = errors.New("конфликт данных")
	// Фатальное нарушение целостности (например, назначение через границу контракта).
	// Это ошибка данных, а не валидации; транзакция всегда откатывается.
	ErrIntegrity = errors.New("нарушение целостности данных")
)
