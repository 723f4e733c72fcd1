package sync

import "github.com/iudanet/tracker/internal/models"

// Status is the sync state machine value.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusError   Status = "error"
	StatusOffline Status = "offline"
)

// State is what subscribers observe.
type State struct {
	Status  Status `json:"status"`
	Pending int    `json:"pending"`
}

// Result summarizes one pass
type Result struct {
	Pushed    int // подтверждены сервером
	Rejected  int // отброшены как окончательно отклонённые
	Retried   int // оставлены в очереди после временной ошибки
	Exhausted int // отброшены после исчерпания попыток (возможная потеря данных)
	Pulled    int // сущностей получено с сервера
	Replaced  int // локальных сущностей заменено серверным состоянием
	Removed   int // локальных сущностей удалено, т.к. их нет на сервере
	Protected int // сущностей пропущено из-за незавершённых намерений в очереди
}

// LossReporter is told about queue items dropped after exhausting retries.
type LossReporter interface {
	ReportLoss(item QueueLoss)
}

// QueueLoss describes a local intent that was permanently discarded
type QueueLoss struct {
	Err  error // последняя временная ошибка
	Item models.QueueItem
}

// LossReporterFunc adapts a function to LossReporter
type LossReporterFunc func(QueueLoss)

// ReportLoss calls f
func (f LossReporterFunc) ReportLoss(loss QueueLoss) {
	f(loss)
}
