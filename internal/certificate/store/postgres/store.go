package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/sentinel"
	txcontext "romportal/pkg/platform/tx"
)

const (
	defaultTxTimeout = 5 * time.Second

	uniqueViolation = "23505"
)

// Store persists certificates and registrants in PostgreSQL. Queries run on
// the transaction carried by ctx when there is one.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

func New(db *sql.DB) *Store {
	return &Store{db: db, txTimeout: defaultTxTimeout}
}

func (s *Store) exec(ctx context.Context) txcontext.DBTX {
	return txcontext.Executor(ctx, s.db)
}

// RunInTx runs fn inside a transaction carried by txCtx. Nested calls join
// the outer transaction. Contexts without a deadline get a default timeout.
func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const certificateColumns = `id, cohort, cert_number, issued_to, type, issued_by, date_issued, validity,
	school_year, year_graduated, google_photos_link, source_registrant_id, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT INTO certificates (cohort, cert_number, issued_to, type, issued_by, date_issued, validity,
			school_year, year_graduated, google_photos_link, source_registrant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	var source sql.NullInt64
	if cert.SourceRegistrantID != nil {
		source = sql.NullInt64{Int64: *cert.SourceRegistrantID, Valid: true}
	}
	err := s.exec(ctx).QueryRowContext(ctx, query,
		string(cert.Cohort),
		cert.CertNumber,
		cert.IssuedTo,
		string(cert.Type),
		cert.IssuedBy,
		cert.DateIssued,
		string(cert.Validity),
		cert.SchoolYear,
		cert.YearGraduated,
		cert.GooglePhotosLink,
		source,
		cert.CreatedAt,
		cert.UpdatedAt,
	).Scan(&cert.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`
	cert, err := scanCertificate(s.exec(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find certificate %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return cert, nil
}

func (s *Store) FindByNumber(ctx context.Context, cohort models.Cohort, number string) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE cohort = $1 AND UPPER(cert_number) = UPPER($2)`
	cert, err := scanCertificate(s.exec(ctx).QueryRowContext(ctx, query, string(cohort), number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find certificate %s: %w", number, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find certificate by number: %w", err)
	}
	return cert, nil
}

func (s *Store) List(ctx context.Context, cohort models.Cohort) ([]*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE cohort = $1 ORDER BY id DESC`
	rows, err := s.exec(ctx).QueryContext(ctx, query, string(cohort))
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, cert *models.Certificate) error {
	query := `
		UPDATE certificates SET
			cert_number = $2,
			issued_to = $3,
			type = $4,
			issued_by = $5,
			date_issued = $6,
			validity = $7,
			school_year = $8,
			year_graduated = $9,
			google_photos_link = $10,
			updated_at = $11
		WHERE id = $1
	`
	res, err := s.exec(ctx).ExecContext(ctx, query,
		cert.ID,
		cert.CertNumber,
		cert.IssuedTo,
		string(cert.Type),
		cert.IssuedBy,
		cert.DateIssued,
		string(cert.Validity),
		cert.SchoolYear,
		cert.YearGraduated,
		cert.GooglePhotosLink,
		cert.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update certificate: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("update certificate %d", cert.ID))
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("delete certificate %d", id))
}

func (s *Store) CountInBucket(ctx context.Context, bucket models.SerialBucket) (int, error) {
	query := `SELECT COUNT(*) FROM certificates WHERE cohort = $1 AND type = $2`
	args := []any{string(models.CohortModern), string(bucket.Type)}
	if bucket.ByYear {
		query += ` AND year_graduated = $3`
		args = append(args, bucket.YearGraduated)
	}
	var n int
	if err := s.exec(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count certificates in bucket: %w", err)
	}
	return n, nil
}

func (s *Store) NumberExists(ctx context.Context, cohort models.Cohort, number string) (bool, error) {
	var exists bool
	err := s.exec(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificates WHERE cohort = $1 AND UPPER(cert_number) = UPPER($2))`,
		string(cohort), number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check certificate number: %w", err)
	}
	return exists, nil
}

// LockSerialBucket takes a transaction-scoped advisory lock keyed by the
// bucket. It is released on commit or rollback.
func (s *Store) LockSerialBucket(ctx context.Context, bucket models.SerialBucket) error {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return errors.New("serial bucket lock requires a transaction")
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, bucket.Key()); err != nil {
		return fmt.Errorf("lock serial bucket %s: %w", bucket.Key(), err)
	}
	return nil
}

const registrantColumns = `id, first_name, middle_name, surname, suffix, gender, birthday, email,
	grade_level_section, strand, school_year, date_started, date_ended, position_assigned,
	status, created_at, updated_at`

func (s *Store) InsertRegistrant(ctx context.Context, r *models.Registrant) error {
	r.Status = models.RegistrantPending
	query := `
		INSERT INTO registrants (first_name, middle_name, surname, suffix, gender, birthday, email,
			grade_level_section, strand, school_year, date_started, date_ended, position_assigned,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err := s.exec(ctx).QueryRowContext(ctx, query,
		r.FirstName,
		r.MiddleName,
		r.Surname,
		r.Suffix,
		r.Gender,
		r.Birthday,
		r.Email,
		r.GradeLevelSection,
		r.Strand,
		r.SchoolYear,
		r.DateStarted,
		r.DateEnded,
		r.PositionAssigned,
		string(r.Status),
		r.CreatedAt,
		r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert registrant: %w", err)
	}
	return nil
}

func (s *Store) FindRegistrant(ctx context.Context, id int64) (*models.Registrant, error) {
	return s.findRegistrant(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE id = $1`, id)
}

// FindRegistrantForUpdate row-locks the registrant until the surrounding
// transaction ends, so two promotions of one registrant serialize.
func (s *Store) FindRegistrantForUpdate(ctx context.Context, id int64) (*models.Registrant, error) {
	return s.findRegistrant(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) findRegistrant(ctx context.Context, query string, id int64) (*models.Registrant, error) {
	r, err := scanRegistrant(s.exec(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find registrant %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find registrant: %w", err)
	}
	return r, nil
}

func (s *Store) ListRegistrants(ctx context.Context, status models.RegistrantStatus) ([]*models.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE status = $1 ORDER BY id ASC`
	rows, err := s.exec(ctx).QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var out []*models.Registrant
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrants: %w", err)
	}
	return out, nil
}

func (s *Store) SetRegistrantStatus(ctx context.Context, id int64, status models.RegistrantStatus, at time.Time) error {
	res, err := s.exec(ctx).ExecContext(ctx,
		`UPDATE registrants SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), at,
	)
	if err != nil {
		return fmt.Errorf("set registrant status: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("set registrant status %d", id))
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row scanner) (*models.Certificate, error) {
	var (
		c      models.Certificate
		cohort string
		typ    string
		valid  string
		source sql.NullInt64
	)
	if err := row.Scan(
		&c.ID,
		&cohort,
		&c.CertNumber,
		&c.IssuedTo,
		&typ,
		&c.IssuedBy,
		&c.DateIssued,
		&valid,
		&c.SchoolYear,
		&c.YearGraduated,
		&c.GooglePhotosLink,
		&source,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Cohort = models.Cohort(cohort)
	c.Type = models.CertificateType(typ)
	c.Validity = models.Validity(valid)
	if source.Valid {
		id := source.Int64
		c.SourceRegistrantID = &id
	}
	return &c, nil
}

func scanRegistrant(row scanner) (*models.Registrant, error) {
	var (
		r      models.Registrant
		status string
	)
	if err := row.Scan(
		&r.ID,
		&r.FirstName,
		&r.MiddleName,
		&r.Surname,
		&r.Suffix,
		&r.Gender,
		&r.Birthday,
		&r.Email,
		&r.GradeLevelSection,
		&r.Strand,
		&r.SchoolYear,
		&r.DateStarted,
		&r.DateEnded,
		&r.PositionAssigned,
		&status,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.Status = models.RegistrantStatus(status)
	return &r, nil
}
