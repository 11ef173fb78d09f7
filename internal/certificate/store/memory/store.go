package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"romportal/internal/certificate/models"
	"romportal/pkg/platform/sentinel"
)

type txKey struct{}

// Store keeps certificates and registrants in maps. Writers and
// transactions are serialized by txMu; a failed transaction restores the
// snapshot taken when it began.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextCertID int64
	nextRegID  int64
	certs      map[int64]*models.Certificate
	regs       map[int64]*models.Registrant
}

func New() *Store {
	return &Store{
		certs: make(map[int64]*models.Certificate),
		regs:  make(map[int64]*models.Registrant),
	}
}

type snapshot struct {
	nextCertID int64
	nextRegID  int64
	certs      map[int64]*models.Certificate
	regs       map[int64]*models.Registrant
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTx runs fn while holding the store's writer lock. Nested calls join
// the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		nextCertID: s.nextCertID,
		nextRegID:  s.nextRegID,
		certs:      make(map[int64]*models.Certificate, len(s.certs)),
		regs:       make(map[int64]*models.Registrant, len(s.regs)),
	}
	for id, c := range s.certs {
		snap.certs[id] = c.Clone()
	}
	for id, r := range s.regs {
		snap.regs[id] = r.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCertID = snap.nextCertID
	s.nextRegID = snap.nextRegID
	s.certs = snap.certs
	s.regs = snap.regs
}

// write runs fn under the data lock, taking the writer lock first unless
// the caller already holds it through RunInTx.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) numberTaken(cohort models.Cohort, number string, exceptID int64) bool {
	for id, c := range s.certs {
		if id != exceptID && c.Cohort == cohort && strings.EqualFold(c.CertNumber, number) {
			return true
		}
	}
	return false
}

func (s *Store) Insert(ctx context.Context, cert *models.Certificate) error {
	return s.write(ctx, func() error {
		if s.numberTaken(cert.Cohort, cert.CertNumber, 0) {
			return fmt.Errorf("insert certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		s.nextCertID++
		cert.ID = s.nextCertID
		s.certs[cert.ID] = cert.Clone()
		return nil
	})
}

func (s *Store) FindByID(_ context.Context, id int64) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certs[id]
	if !ok {
		return nil, fmt.Errorf("find certificate %d: %w", id, sentinel.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *Store) FindByNumber(_ context.Context, cohort models.Cohort, number string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.certs {
		if c.Cohort == cohort && strings.EqualFold(c.CertNumber, number) {
			return c.Clone(), nil
		}
	}
	return nil, fmt.Errorf("find certificate %s: %w", number, sentinel.ErrNotFound)
}

func (s *Store) List(_ context.Context, cohort models.Cohort) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Certificate, 0, len(s.certs))
	for _, c := range s.certs {
		if c.Cohort == cohort {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Update(ctx context.Context, cert *models.Certificate) error {
	return s.write(ctx, func() error {
		if _, ok := s.certs[cert.ID]; !ok {
			return fmt.Errorf("update certificate %d: %w", cert.ID, sentinel.ErrNotFound)
		}
		if s.numberTaken(cert.Cohort, cert.CertNumber, cert.ID) {
			return fmt.Errorf("update certificate %s: %w", cert.CertNumber, sentinel.ErrAlreadyUsed)
		}
		s.certs[cert.ID] = cert.Clone()
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.write(ctx, func() error {
		if _, ok := s.certs[id]; !ok {
			return fmt.Errorf("delete certificate %d: %w", id, sentinel.ErrNotFound)
		}
		delete(s.certs, id)
		return nil
	})
}

func (s *Store) CountInBucket(_ context.Context, bucket models.SerialBucket) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.certs {
		if c.Cohort != models.CohortModern || c.Type != bucket.Type {
			continue
		}
		if bucket.ByYear && c.YearGraduated != bucket.YearGraduated {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) NumberExists(_ context.Context, cohort models.Cohort, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numberTaken(cohort, number, 0), nil
}

// LockSerialBucket is satisfied by the transaction's writer lock.
func (s *Store) LockSerialBucket(ctx context.Context, _ models.SerialBucket) error {
	if !s.inTx(ctx) {
		return errors.New("serial bucket lock requires a transaction")
	}
	return nil
}

func (s *Store) InsertRegistrant(ctx context.Context, r *models.Registrant) error {
	return s.write(ctx, func() error {
		s.nextRegID++
		r.ID = s.nextRegID
		r.Status = models.RegistrantPending
		s.regs[r.ID] = r.Clone()
		return nil
	})
}

func (s *Store) FindRegistrant(_ context.Context, id int64) (*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regs[id]
	if !ok {
		return nil, fmt.Errorf("find registrant %d: %w", id, sentinel.ErrNotFound)
	}
	return r.Clone(), nil
}

// FindRegistrantForUpdate relies on the transaction's writer lock.
func (s *Store) FindRegistrantForUpdate(ctx context.Context, id int64) (*models.Registrant, error) {
	return s.FindRegistrant(ctx, id)
}

func (s *Store) ListRegistrants(_ context.Context, status models.RegistrantStatus) ([]*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Registrant, 0, len(s.regs))
	for _, r := range s.regs {
		if r.Status == status {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetRegistrantStatus(ctx context.Context, id int64, status models.RegistrantStatus, at time.Time) error {
	return s.write(ctx, func() error {
		r, ok := s.regs[id]
		if !ok {
			return fmt.Errorf("set registrant status %d: %w", id, sentinel.ErrNotFound)
		}
		r.Status = status
		r.UpdatedAt = at
		return nil
	})
}
