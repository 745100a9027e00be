package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/phenrril/kitos/internal/domain"
)

func newVariantUC(rec *recorder, ds ...*domain.Design) (*VariantUC, *fakeDesigns, *fakeVariants, *fakeBlobs) {
	designs := newFakeDesigns(rec, ds...)
	variants := &fakeVariants{rec: rec}
	blobs := &fakeBlobs{rec: rec}
	uc := &VariantUC{
		Designs:  designs,
		Variants: variants,
		Cache:    &fakeCache{},
		Uploads: &UploadUC{Blobs: blobs, Now: func() time.Time {
			return time.UnixMilli(1700000000000)
		}},
	}
	return uc, designs, variants, blobs
}

func TestCreateVariantWithoutGroupsIsRejected(t *testing.T) {
	rec := &recorder{}
	uc, _, _, blobs := newVariantUC(rec, &domain.Design{Slug: "bare", Name: "Bare", Category: domain.CategoryMarble})

	_, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "bare",
		ImageURL:   "http://x/img.png",
		Options:    domain.NewOptionValues("material", "nero"),
	})
	if !errors.Is(err, domain.ErrNoOptionGroups) {
		t.Fatalf("create: want ErrNoOptionGroups got=%v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("create: ErrNoOptionGroups should be a validation error")
	}

	_, _, err = uc.CreateWithUpload(context.Background(), "bare", domain.NewOptionValues("material", "nero"),
		UploadFile{Name: "a.png", Data: []byte("png")})
	if !errors.Is(err, domain.ErrNoOptionGroups) {
		t.Fatalf("upload: want ErrNoOptionGroups got=%v", err)
	}
	if w := rec.writes(); len(w) != 0 {
		t.Fatalf("writes: want none got=%v", w)
	}
	if len(blobs.keys) != 0 {
		t.Fatalf("blob puts: want=0 got=%d", len(blobs.keys))
	}
}

func TestCreateVariantGrowsCatalogBeforeWritingVariant(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "test-1", Name: "Test", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble", Options: []string{}}}}
	uc, designs, variants, _ := newVariantUC(rec, d)

	v, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "test-1",
		ImageURL:   "http://x/img.png",
		Options:    domain.NewOptionValues("marble", "Nero"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := []string{"design.save_groups", "variant.create", "design.set_hero"}
	if got := rec.writes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("call order: want=%v got=%v", want, got)
	}
	stored := designs.bySlug["test-1"]
	if got := stored.Groups()[0].Options; !reflect.DeepEqual(got, []string{"Nero"}) {
		t.Fatalf("catalog: want=[Nero] got=%v", got)
	}
	if stored.OptionGroupsVersion != 1 {
		t.Fatalf("version: want=1 got=%d", stored.OptionGroupsVersion)
	}
	if stored.HeroImageURL != "http://x/img.png" {
		t.Fatalf("hero: want=%q got=%q", "http://x/img.png", stored.HeroImageURL)
	}
	if s, _ := v.Options.Get("marble"); s != "Nero" {
		t.Fatalf("variant option: want=%q got=%q", "Nero", s)
	}
	if len(variants.rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(variants.rows))
	}
}

func TestCreateVariantKnownValueSkipsCatalogWrite(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble, HeroImageURL: "/hero.png",
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble", Options: []string{"Nero"}}}}
	uc, _, _, _ := newVariantUC(rec, d)

	if _, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "d", ImageURL: "/a.png", Options: domain.NewOptionValues("marble", "Nero"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := rec.writes(); !reflect.DeepEqual(got, []string{"variant.create"}) {
		t.Fatalf("writes: want=[variant.create] got=%v", got)
	}
}

func TestCreateVariantRejectsUnknownGroup(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble"}}}
	uc, _, _, _ := newVariantUC(rec, d)

	_, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "d", ImageURL: "/a.png", Options: domain.NewOptionValues("cloth", "blue"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want validation error got=%v", err)
	}
	if w := rec.writes(); len(w) != 0 {
		t.Fatalf("writes: want none got=%v", w)
	}
}

func TestCreateVariantRequiresFields(t *testing.T) {
	uc, _, _, _ := newVariantUC(&recorder{})
	for _, in := range []CreateVariantInput{
		{ImageURL: "/a.png"},
		{DesignSlug: "d"},
		{DesignSlug: "  ", ImageURL: "  "},
	} {
		if _, err := uc.Create(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%+v: want validation error got=%v", in, err)
		}
	}
}

func TestCreateVariantAutoCreatesDesign(t *testing.T) {
	rec := &recorder{}
	uc, designs, _, _ := newVariantUC(rec)

	v, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "new-table",
		ImageURL:   "/n.png",
		Options:    domain.NewOptionValues("Pocket Color", "red"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	d, ok := designs.bySlug["new-table"]
	if !ok {
		t.Fatalf("design was not created")
	}
	if d.Category != domain.CategoryMarble || !d.IsFeatured || d.Name != "new-table" {
		t.Fatalf("auto design: got category=%q featured=%v name=%q", d.Category, d.IsFeatured, d.Name)
	}
	groups := d.Groups()
	if len(groups) != 1 || groups[0].Key != "pocket_color" || groups[0].Name != "Pocket Color" {
		t.Fatalf("groups: got=%+v", groups)
	}
	if !reflect.DeepEqual(groups[0].Options, []string{"red"}) {
		t.Fatalf("options: want=[red] got=%v", groups[0].Options)
	}
	if s, _ := v.Options.Get("pocket_color"); s != "red" {
		t.Fatalf("variant option: want=%q got=%q", "red", s)
	}
	want := []string{"design.create", "design.save_groups", "variant.create", "design.set_hero"}
	if got := rec.writes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("call order: want=%v got=%v", want, got)
	}
}

func TestCreateVariantAutoCreateNeedsOptions(t *testing.T) {
	rec := &recorder{}
	uc, designs, _, _ := newVariantUC(rec)

	_, err := uc.Create(context.Background(), CreateVariantInput{DesignSlug: "ghost", ImageURL: "/g.png"})
	if !errors.Is(err, domain.ErrNoOptionGroups) {
		t.Fatalf("want ErrNoOptionGroups got=%v", err)
	}
	if _, ok := designs.bySlug["ghost"]; ok {
		t.Fatalf("design should not be created")
	}
}

func TestCreateVariantCatalogSaveFailureStopsVariant(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble"}}}
	uc, designs, variants, _ := newVariantUC(rec, d)
	designs.saveErr = errBoom

	_, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "d", ImageURL: "/a.png", Options: domain.NewOptionValues("marble", "Nero"),
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want boom got=%v", err)
	}
	if len(variants.rows) != 0 {
		t.Fatalf("variant should not be written")
	}
}

func TestCreateWithUpload(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "test-1", Name: "T", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble", Options: []string{"Nero"}}}}
	uc, _, _, blobs := newVariantUC(rec, d)

	v, up, err := uc.CreateWithUpload(context.Background(), "test-1", domain.NewOptionValues("marble", "Nero"),
		UploadFile{Name: "My Photo.PNG", ContentType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantKey := "test-1/1700000000000_my-photo.png"
	if up.Key != wantKey {
		t.Fatalf("key: want=%q got=%q", wantKey, up.Key)
	}
	if v.ImageURL != "http://blobs/"+wantKey {
		t.Fatalf("image: got=%q", v.ImageURL)
	}
	if len(blobs.keys) != 1 {
		t.Fatalf("puts: want=1 got=%d", len(blobs.keys))
	}
	want := []string{"blob.put", "variant.create", "design.set_hero"}
	if got := rec.writes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("call order: want=%v got=%v", want, got)
	}
}

func TestCreateWithUploadKeepsBlobOnMetadataFailure(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble", Options: []string{"Nero"}}}}
	uc, _, variants, blobs := newVariantUC(rec, d)
	variants.createErr = errBoom

	v, up, err := uc.CreateWithUpload(context.Background(), "d", domain.NewOptionValues("marble", "Nero"),
		UploadFile{Name: "a.png", Data: []byte("png")})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want boom got=%v", err)
	}
	if v != nil {
		t.Fatalf("variant: want nil")
	}
	if up == nil || !strings.HasPrefix(up.Key, "d/") {
		t.Fatalf("upload result should still be returned, got=%+v", up)
	}
	if len(blobs.keys) != 1 {
		t.Fatalf("blob should remain stored")
	}
}

func TestListVariantsUsesCache(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble"}}}
	uc, _, _, _ := newVariantUC(rec, d)
	cache := uc.Cache.(*fakeCache)

	if _, err := uc.Create(context.Background(), CreateVariantInput{
		DesignSlug: "d", ImageURL: "/a.png", Options: domain.NewOptionValues("marble", "Nero"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("invalidate: want=1 got=%d", cache.invalidated)
	}
	for i := 0; i < 2; i++ {
		vs, err := uc.List(context.Background(), "d")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(vs) != 1 {
			t.Fatalf("list: want=1 got=%d", len(vs))
		}
	}
	lists := 0
	for _, c := range rec.calls {
		if c == "variant.list" {
			lists++
		}
	}
	if lists != 1 {
		t.Fatalf("store reads: want=1 got=%d", lists)
	}
}

func TestListVariantsUnknownDesign(t *testing.T) {
	uc, _, _, _ := newVariantUC(&recorder{})
	vs, err := uc.List(context.Background(), "nope")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if vs == nil || len(vs) != 0 {
		t.Fatalf("want empty non-nil list got=%v", vs)
	}
	if _, err := uc.List(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty slug: want validation got=%v", err)
	}
}

func TestListAfterCreateSeesVariantDespiteConcurrentRead(t *testing.T) {
	rec := &recorder{}
	d := &domain.Design{Slug: "d", Name: "D", Category: domain.CategoryMarble,
		OptionGroups: []domain.OptionGroup{{Key: "marble", Name: "Marble", Options: []string{"Nero"}}}}
	uc, _, variants, _ := newVariantUC(rec, d)
	slow := &pausingVariants{fakeVariants: variants, read: make(chan struct{}), release: make(chan struct{})}
	uc.Variants = slow
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := uc.List(ctx, "d")
		done <- err
	}()
	<-slow.read

	if _, err := uc.Create(ctx, CreateVariantInput{
		DesignSlug: "d", ImageURL: "/a.png", Options: domain.NewOptionValues("marble", "Nero"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("concurrent list: %v", err)
	}

	for i := 0; i < 2; i++ {
		vs, err := uc.List(ctx, "d")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(vs) != 1 {
			t.Fatalf("list #%d after create: want=1 got=%d", i+1, len(vs))
		}
	}
}
