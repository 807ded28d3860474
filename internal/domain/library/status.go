package library

// FamilyStatus tracks how complete a product family's reference library is.
type FamilyStatus string

const (
	// FamilyBuilding means the family is below its image threshold.
	FamilyBuilding FamilyStatus = "building"
	// FamilyReady means the family holds at least its required image count.
	FamilyReady FamilyStatus = "ready"
	// FamilyLocked is a manual pin: reconciliation never touches it.
	FamilyLocked FamilyStatus = "locked"
)

// NextFamilyStatus derives the post-reconciliation status. Locked families
// are never auto-demoted or auto-promoted.
func NextFamilyStatus(current FamilyStatus, imageCount int64, minRequired int) FamilyStatus {
	if current == FamilyLocked {
		return FamilyLocked
	}
	if imageCount >= int64(minRequired) {
		return FamilyReady
	}
	return FamilyBuilding
}

// QueueStatus is the lifecycle state of one queued candidate URL.
type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
	QueueSkipped    QueueStatus = "skipped"
)

// Terminal reports whether a queue item can never be claimed again.
func (s QueueStatus) Terminal() bool {
	switch s {
	case QueueCompleted, QueueFailed, QueueSkipped:
		return true
	}
	return false
}

// ResolvableTo reports whether status is a legal terminal outcome for a
// processing item.
func ResolvableTo(status QueueStatus) bool {
	return status.Terminal()
}

// ImageSource records which ingestion path produced a stored image.
type ImageSource string

const (
	SourceSeed    ImageSource = "seed"
	SourceSerpAPI ImageSource = "serpapi"
)
