package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/expo-leads/internal/entity"
)

// memStore is an in-memory stand-in for Postgres. WithinTx snapshots the
// rows and restores them when fn fails, so rollbacks are observable.
type memStore struct {
	txMu        sync.Mutex // transactions run one at a time
	mu          sync.Mutex
	nextLeadID  int64
	leads       []*entity.Lead
	interests   []*entity.ProductInterest
	exhibitions map[int64]*entity.Exhibition
	products    map[int64]*entity.Product

	txCount int
	failOn  string // repository call that returns errStore
	inTx    bool
}

var errStore = errors.New("connection reset by peer")

func newMemStore() *memStore {
	return &memStore{
		exhibitions: map[int64]*entity.Exhibition{
			1: {ID: 1, Name: "TexFair 2026", Active: true},
			2: {ID: 2, Name: "Old Expo", Deleted: true},
		},
		products: map[int64]*entity.Product{
			10: {ID: 10, Name: "Looms", Attachment: "looms.pdf"},
			11: {ID: 11, Name: "Dyes"},
			12: {ID: 12, Name: "Retired", Deleted: true},
		},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	leads := append([]*entity.Lead(nil), s.leads...)
	interests := append([]*entity.ProductInterest(nil), s.interests...)
	nextID := s.nextLeadID
	s.inTx = true
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.leads, s.interests, s.nextLeadID = leads, interests, nextID
	}
	return err
}

func (s *memStore) fail(op string) error {
	if s.failOn == op {
		return errStore
	}
	return nil
}

func (s *memStore) leadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func (s *memStore) interestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interests)
}

func (s *memStore) addLead(l *entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLeadID++
	l.ID = s.nextLeadID
	s.leads = append(s.leads, l)
}

func (s *memStore) addInterest(leadID, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests = append(s.interests, &entity.ProductInterest{ID: int64(len(s.interests) + 1), LeadID: leadID, ProductID: productID})
}

type memLeadRepo struct{ s *memStore }

func (r memLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("lead.create"); err != nil {
		return err
	}
	for _, l := range r.s.leads {
		if l.ExhibitionID == lead.ExhibitionID && l.Email == lead.Email {
			return entity.ErrDuplicateRegistration
		}
	}
	r.s.nextLeadID++
	lead.ID = r.s.nextLeadID
	stored := *lead
	r.s.leads = append(r.s.leads, &stored)
	return nil
}

func (r memLeadRepo) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("lead.find"); err != nil {
		return nil, err
	}
	for _, l := range r.s.leads {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (r memLeadRepo) FindByExhibitionID(ctx context.Context, exhibitionID int64) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("lead.list"); err != nil {
		return nil, err
	}
	var out []*entity.Lead
	for _, l := range r.s.leads {
		if l.ExhibitionID == exhibitionID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memLeadRepo) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("lead.list"); err != nil {
		return nil, err
	}
	out := make([]*entity.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r memLeadRepo) ExistsByEmailAndExhibitionID(ctx context.Context, email string, exhibitionID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("lead.exists"); err != nil {
		return false, err
	}
	for _, l := range r.s.leads {
		if l.ExhibitionID == exhibitionID && l.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memInterestRepo struct{ s *memStore }

func (r memInterestRepo) Create(ctx context.Context, interest *entity.ProductInterest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("interest.create"); err != nil {
		return err
	}
	for _, i := range r.s.interests {
		if i.LeadID == interest.LeadID && i.ProductID == interest.ProductID {
			return entity.ErrDuplicateInterest
		}
	}
	interest.ID = int64(len(r.s.interests) + 1)
	stored := *interest
	r.s.interests = append(r.s.interests, &stored)
	return nil
}

func (r memInterestRepo) Exists(ctx context.Context, leadID, productID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.interests {
		if i.LeadID == leadID && i.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r memInterestRepo) ProductsByLead(ctx context.Context, leadID int64) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("interest.products"); err != nil {
		return nil, err
	}
	var out []*entity.Product
	for _, i := range r.s.interests {
		if i.LeadID == leadID {
			p := *r.s.products[i.ProductID]
			out = append(out, &p)
		}
	}
	return out, nil
}

type memExhibitionRepo struct{ s *memStore }

func (r memExhibitionRepo) FindByID(ctx context.Context, id int64) (*entity.Exhibition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exhibition.find"); err != nil {
		return nil, err
	}
	e, ok := r.s.exhibitions[id]
	if !ok || e.Deleted {
		return nil, entity.ErrExhibitionNotFound
	}
	cp := *e
	return &cp, nil
}

type memProductRepo struct{ s *memStore }

func (r memProductRepo) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Deleted {
		return nil, entity.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// memDashboardRepo answers the aggregate queries from the same rows.
// memDashboardRepo buckets days in loc, or in each timestamp's own zone when nil.
type memDashboardRepo struct {
	s   *memStore
	loc *time.Location
}

func (r memDashboardRepo) CountLeads(ctx context.Context) (int64, error) {
	if r.s.failOn == "dashboard" {
		return 0, errStore
	}
	return int64(r.s.leadCount()), nil
}

func (r memDashboardRepo) CountLeadsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.leads {
		if !l.CreatedAt.Before(start) && l.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (r memDashboardRepo) CountInterests(ctx context.Context) (int64, error) {
	return int64(r.s.interestCount()), nil
}

func (r memDashboardRepo) RecentLeads(ctx context.Context, limit int) ([]entity.RecentVisitor, error) {
	r.s.mu.Lock()
	leads := append([]*entity.Lead(nil), r.s.leads...)
	r.s.mu.Unlock()

	sort.SliceStable(leads, func(i, j int) bool {
		if !leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		}
		return leads[i].ID > leads[j].ID
	})
	if len(leads) > limit {
		leads = leads[:limit]
	}

	out := make([]entity.RecentVisitor, 0, len(leads))
	for _, l := range leads {
		out = append(out, entity.RecentVisitor{ID: l.ID, Name: l.Name, Email: l.Email, Phone: l.Phone, CreatedAt: l.CreatedAt})
	}
	return out, nil
}

func (r memDashboardRepo) LeadsPerDay(ctx context.Context) ([]entity.DateCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, l := range r.s.leads {
		at := l.CreatedAt
		if r.loc != nil {
			at = at.In(r.loc)
		}
		counts[at.Format("2006-01-02")]++
	}
	out := make([]entity.DateCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, entity.DateCount{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r memDashboardRepo) TopProducts(ctx context.Context) ([]entity.NameCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, i := range r.s.interests {
		counts[r.s.products[i.ProductID].Name]++
	}
	out := make([]entity.NameCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, entity.NameCount{Name: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func newSubmitUseCase(s *memStore) *SubmitLeadUseCase {
	return NewSubmitLeadUseCase(s, memLeadRepo{s}, memInterestRepo{s}, memExhibitionRepo{s}, memProductRepo{s}, nil)
}
