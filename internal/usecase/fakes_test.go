package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/kitos/internal/domain"
)

// recorder keeps the order of store and blob calls across fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(c string) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *recorder) writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		switch c {
		case "design.find", "design.list", "variant.list":
			continue
		}
		out = append(out, c)
	}
	return out
}

type fakeDesigns struct {
	rec     *recorder
	mu      sync.Mutex
	bySlug  map[string]*domain.Design
	saveErr error
}

func newFakeDesigns(rec *recorder, ds ...*domain.Design) *fakeDesigns {
	f := &fakeDesigns{rec: rec, bySlug: map[string]*domain.Design{}}
	for _, d := range ds {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		f.bySlug[d.Slug] = d
	}
	return f
}

func (f *fakeDesigns) byID(id uuid.UUID) *domain.Design {
	for _, d := range f.bySlug {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (f *fakeDesigns) FindBySlug(_ context.Context, slug string) (*domain.Design, error) {
	f.rec.add("design.find")
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	cp.OptionGroups = domain.NormalizeGroups(d.Groups())
	return &cp, nil
}

func (f *fakeDesigns) List(_ context.Context, _ domain.DesignFilter) ([]domain.Design, error) {
	f.rec.add("design.list")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Design
	for _, d := range f.bySlug {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeDesigns) Create(_ context.Context, d *domain.Design) error {
	f.rec.add("design.create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySlug[d.Slug]; ok {
		return domain.ErrConflict
	}
	cp := *d
	f.bySlug[d.Slug] = &cp
	return nil
}

func (f *fakeDesigns) Update(_ context.Context, slug string, p domain.DesignPatch) (*domain.Design, error) {
	f.rec.add("design.update")
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.OptionGroups != nil {
		if p.ExpectedVersion != nil && *p.ExpectedVersion != d.OptionGroupsVersion {
			return nil, domain.ErrConflict
		}
		d.OptionGroups = *p.OptionGroups
		d.OptionGroupsVersion++
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDesigns) SaveOptionGroups(_ context.Context, id uuid.UUID, groups []domain.OptionGroup, expected *int) (int, error) {
	f.rec.add("design.save_groups")
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byID(id)
	if d == nil {
		return 0, domain.ErrNotFound
	}
	if expected != nil && *expected != d.OptionGroupsVersion {
		return 0, domain.ErrConflict
	}
	d.OptionGroups = groups
	d.OptionGroupsVersion++
	return d.OptionGroupsVersion, nil
}

func (f *fakeDesigns) SetHeroIfEmpty(_ context.Context, id uuid.UUID, url string) error {
	f.rec.add("design.set_hero")
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.byID(id); d != nil && d.HeroImageURL == "" {
		d.HeroImageURL = url
	}
	return nil
}

type fakeVariants struct {
	rec       *recorder
	mu        sync.Mutex
	rows      []domain.Variant
	createErr error
}

func (f *fakeVariants) Create(_ context.Context, v *domain.Variant) error {
	f.rec.add("variant.create")
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v.Normalize()
	f.rows = append(f.rows, *v)
	return nil
}

func (f *fakeVariants) ListByDesign(_ context.Context, id uuid.UUID) ([]domain.Variant, error) {
	f.rec.add("variant.list")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Variant{}
	for _, v := range f.rows {
		if v.DesignID == id {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeBlobs struct {
	rec  *recorder
	keys []string
	err  error
}

func (f *fakeBlobs) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.rec.add("blob.put")
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "http://blobs/" + key, nil
}

func (f *fakeBlobs) Name() string { return "fake" }

type cacheSlot struct {
	id  uuid.UUID
	gen int64
}

type fakeCache struct {
	mu          sync.Mutex
	gens        map[uuid.UUID]int64
	data        map[cacheSlot][]domain.Variant
	invalidated int
}

func (f *fakeCache) Get(_ context.Context, id uuid.UUID) ([]domain.Variant, int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen := f.gens[id]
	vs, ok := f.data[cacheSlot{id, gen}]
	return vs, gen, ok, nil
}

func (f *fakeCache) Set(_ context.Context, id uuid.UUID, gen int64, vs []domain.Variant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[cacheSlot][]domain.Variant{}
	}
	f.data[cacheSlot{id, gen}] = vs
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens == nil {
		f.gens = map[uuid.UUID]int64{}
	}
	f.invalidated++
	f.gens[id]++
	return nil
}

// pausingVariants holds the first ListByDesign after it has read the rows,
// until release is closed.
type pausingVariants struct {
	*fakeVariants
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (p *pausingVariants) ListByDesign(ctx context.Context, id uuid.UUID) ([]domain.Variant, error) {
	vs, err := p.fakeVariants.ListByDesign(ctx, id)
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.read)
		<-p.release
	}
	return vs, err
}

type fakeCategories struct {
	rows map[string]domain.Category
}

func (f *fakeCategories) List(context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := f.rows[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCategories) Upsert(_ context.Context, slug string, p domain.CategoryPatch) (*domain.Category, error) {
	if f.rows == nil {
		f.rows = map[string]domain.Category{}
	}
	c, ok := f.rows[slug]
	if !ok {
		c = domain.Category{Slug: slug, Name: slug}
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.HeroImageURL != nil {
		c.HeroImageURL = *p.HeroImageURL
	}
	f.rows[slug] = c
	return &c, nil
}

func (f *fakeCategories) Count(context.Context) (int64, error) { return int64(len(f.rows)), nil }

type fakeGallery struct {
	items []domain.GalleryItem
}

func (f *fakeGallery) List(context.Context) ([]domain.GalleryItem, error) { return f.items, nil }

func (f *fakeGallery) Create(_ context.Context, it *domain.GalleryItem) error {
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeGallery) Update(_ context.Context, id uuid.UUID, p domain.GalleryPatch) (*domain.GalleryItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			if p.Title != nil {
				f.items[i].Title = *p.Title
			}
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGallery) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

var errBoom = errors.New("boom")

func strp(s string) *string { return &s }
