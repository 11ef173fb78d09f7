package service

import (
	"context"
	"time"

	"romportal/internal/certificate/models"
)

// CertificateStore persists certificates of both cohorts in one table.
// Implementations return sentinel.ErrNotFound for missing rows and
// sentinel.ErrAlreadyUsed when a number is taken within a cohort.
type CertificateStore interface {
	Insert(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id int64) (*models.Certificate, error)
	FindByNumber(ctx context.Context, cohort models.Cohort, number string) (*models.Certificate, error)
	List(ctx context.Context, cohort models.Cohort) ([]*models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
	Delete(ctx context.Context, id int64) error

	// CountInBucket counts modern certificates in the serial bucket.
	CountInBucket(ctx context.Context, bucket models.SerialBucket) (int, error)
	NumberExists(ctx context.Context, cohort models.Cohort, number string) (bool, error)
	// LockSerialBucket serializes generators of one bucket until the
	// surrounding transaction ends. It must be called inside RunInTx.
	LockSerialBucket(ctx context.Context, bucket models.SerialBucket) error
}

// RegistrantStore persists self-submitted registrations.
type RegistrantStore interface {
	InsertRegistrant(ctx context.Context, r *models.Registrant) error
	FindRegistrant(ctx context.Context, id int64) (*models.Registrant, error)
	// FindRegistrantForUpdate locks the row until the transaction ends.
	FindRegistrantForUpdate(ctx context.Context, id int64) (*models.Registrant, error)
	ListRegistrants(ctx context.Context, status models.RegistrantStatus) ([]*models.Registrant, error)
	SetRegistrantStatus(ctx context.Context, id int64, status models.RegistrantStatus, at time.Time) error
}

// StoreTx provides a transactional boundary for multi-step writes.
// Implementations may wrap a database transaction or, in-memory, a coarse
// lock with snapshot rollback. Stores called with txCtx join the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Repository is the full store surface a backend provides.
type Repository interface {
	CertificateStore
	RegistrantStore
	StoreTx
}
