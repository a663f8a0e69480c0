package memory

import (
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
)

// Memory is an in-process repository for development and tests. Findings and
// cases share one lock so that categorization is atomic.
type Memory struct {
	cases        *caseStore
	finding      *findingRepository
	capa         *capaRepository
	notification *notificationRepository
	directory    *directoryRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	cases := newCaseStore()
	return &Memory{
		cases:        cases,
		finding:      &findingRepository{store: cases},
		capa:         &capaRepository{store: cases},
		notification: newNotificationRepository(),
		directory:    newDirectoryRepository(),
	}
}

func (m *Memory) Finding() interfaces.FindingRepository {
	return m.finding
}

func (m *Memory) CAPA() interfaces.CAPARepository {
	return m.capa
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) Directory() interfaces.DirectoryRepository {
	return m.directory
}

func (m *Memory) Close() error {
	return nil
}
