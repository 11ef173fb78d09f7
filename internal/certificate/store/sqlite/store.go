package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"romportal/internal/certificate/models"
	"romportal/pkg/platform/sentinel"
	txcontext "romportal/pkg/platform/tx"
)

// Store persists certificates and registrants in SQLite through gorm. The
// database handle must be limited to one open connection: SQLite allows a
// single writer, and that connection is the serial bucket lock.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the certificate and registrant tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&certificateRow{}, &registrantRow{})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return txcontext.Gorm(ctx, s.db)
}

// RunInTx runs fn in a gorm transaction carried by txCtx. Nested calls join
// the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := txcontext.GormFrom(ctx); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txcontext.WithGormTx(ctx, tx))
	})
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Store) Insert(ctx context.Context, cert *models.Certificate) error {
	row := toCertificateRow(cert)
	row.ID = 0
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("insert certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	cert.ID = row.ID
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	var row certificateRow
	err := s.conn(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find certificate %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) FindByNumber(ctx context.Context, cohort models.Cohort, number string) (*models.Certificate, error) {
	var row certificateRow
	err := s.conn(ctx).
		Where("cohort = ? AND UPPER(cert_number) = UPPER(?)", string(cohort), number).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find certificate %s: %w", number, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find certificate by number: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) List(ctx context.Context, cohort models.Cohort) ([]*models.Certificate, error) {
	var rows []certificateRow
	err := s.conn(ctx).Where("cohort = ?", string(cohort)).Order("id DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	out := make([]*models.Certificate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, cert *models.Certificate) error {
	res := s.conn(ctx).Model(&certificateRow{}).Where("id = ?", cert.ID).Updates(map[string]any{
		"cert_number":        cert.CertNumber,
		"issued_to":          cert.IssuedTo,
		"type":               string(cert.Type),
		"issued_by":          cert.IssuedBy,
		"date_issued":        cert.DateIssued,
		"validity":           string(cert.Validity),
		"school_year":        cert.SchoolYear,
		"year_graduated":     cert.YearGraduated,
		"google_photos_link": cert.GooglePhotosLink,
		"updated_at":         cert.UpdatedAt,
	})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return fmt.Errorf("update certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update certificate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update certificate %d: %w", cert.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&certificateRow{})
	if res.Error != nil {
		return fmt.Errorf("delete certificate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete certificate %d: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) CountInBucket(ctx context.Context, bucket models.SerialBucket) (int, error) {
	q := s.conn(ctx).Model(&certificateRow{}).
		Where("cohort = ? AND type = ?", string(models.CohortModern), string(bucket.Type))
	if bucket.ByYear {
		q = q.Where("year_graduated = ?", bucket.YearGraduated)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count certificates in bucket: %w", err)
	}
	return int(n), nil
}

func (s *Store) NumberExists(ctx context.Context, cohort models.Cohort, number string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&certificateRow{}).
		Where("cohort = ? AND UPPER(cert_number) = UPPER(?)", string(cohort), number).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check certificate number: %w", err)
	}
	return n > 0, nil
}

// LockSerialBucket is satisfied by SQLite's single writer: the transaction
// owns the only connection until it ends.
func (s *Store) LockSerialBucket(ctx context.Context, _ models.SerialBucket) error {
	if _, ok := txcontext.GormFrom(ctx); !ok {
		return errors.New("serial bucket lock requires a transaction")
	}
	return nil
}

func (s *Store) InsertRegistrant(ctx context.Context, r *models.Registrant) error {
	r.Status = models.RegistrantPending
	row := toRegistrantRow(r)
	row.ID = 0
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert registrant: %w", err)
	}
	r.ID = row.ID
	return nil
}

func (s *Store) FindRegistrant(ctx context.Context, id int64) (*models.Registrant, error) {
	var row registrantRow
	err := s.conn(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find registrant %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find registrant: %w", err)
	}
	return row.toModel(), nil
}

// FindRegistrantForUpdate needs no row lock on SQLite; the transaction
// holds the database's only writer connection.
func (s *Store) FindRegistrantForUpdate(ctx context.Context, id int64) (*models.Registrant, error) {
	return s.FindRegistrant(ctx, id)
}

func (s *Store) ListRegistrants(ctx context.Context, status models.RegistrantStatus) ([]*models.Registrant, error) {
	var rows []registrantRow
	err := s.conn(ctx).Where("status = ?", string(status)).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	out := make([]*models.Registrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) SetRegistrantStatus(ctx context.Context, id int64, status models.RegistrantStatus, at time.Time) error {
	res := s.conn(ctx).Model(&registrantRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("set registrant status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set registrant status %d: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
