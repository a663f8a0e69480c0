package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Finding() FindingRepository
	CAPA() CAPARepository
	Notification() NotificationRepository
	Directory() DirectoryRepository

	Close() error
}
