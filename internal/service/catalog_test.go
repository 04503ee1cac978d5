package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/refadmin/internal/domain/export"
	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
)

// fakeSource — Source в памяти со счётчиком обращений к List.
type fakeSource[T model.Record] struct {
	mu      sync.Mutex
	items   []T
	lists   atomic.Int32
	listErr error
	mutErr  error
	// block задерживает Create до закрытия канала
	block chan struct{}
	// listGate задерживает ответ следующего List (снимок уже сделан),
	// listStarted закрывается, когда этот List начался
	listGate    chan struct{}
	listStarted chan struct{}

	created []T
	updated []int64
	// updatedRecs — тела запросов Update в порядке вызовов
	updatedRecs []T
	deleted     []int64
}

func (f *fakeSource[T]) List(context.Context) ([]T, error) {
	f.lists.Add(1)
	f.mu.Lock()
	if f.listErr != nil {
		f.mu.Unlock()
		return nil, f.listErr
	}
	out := make([]T, len(f.items))
	copy(out, f.items)
	gate, started := f.listGate, f.listStarted
	f.listGate, f.listStarted = nil, nil
	f.mu.Unlock()

	if gate != nil {
		close(started)
		<-gate
	}
	return out, nil
}

func (f *fakeSource[T]) Create(_ context.Context, rec T) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.created = append(f.created, rec)
	f.items = append(f.items, rec)
	return nil
}

func (f *fakeSource[T]) Update(_ context.Context, id int64, rec T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.updated = append(f.updated, id)
	f.updatedRecs = append(f.updatedRecs, rec)
	return nil
}

func (f *fakeSource[T]) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func centre(id int64, titre string) model.Centre {
	return model.Centre{ID: id, Titre: model.StrPtr(titre), Etat: model.EtatActive}
}

func centresSource(n int) *fakeSource[model.Centre] {
	src := &fakeSource[model.Centre]{}
	for i := 1; i <= n; i++ {
		src.items = append(src.items, centre(int64(i), fmt.Sprintf("Centre %02d", i)))
	}
	return src
}

func newCentres(src Source[model.Centre], opts CatalogOptions) *Catalog[model.Centre] {
	return NewCatalog[model.Centre]("centres", src, filter.CentreFields, opts, testLogger())
}

func TestCatalog_ListCached(t *testing.T) {
	src := centresSource(3)
	cat := newCentres(src, CatalogOptions{TTL: time.Minute})

	for i := 0; i < 3; i++ {
		items, err := cat.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("len = %d, ожидается 3", len(items))
		}
	}
	if got := src.lists.Load(); got != 1 {
		t.Errorf("обращений к API = %d, ожидается 1", got)
	}

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := src.lists.Load(); got != 2 {
		t.Errorf("после Refresh обращений = %d, ожидается 2", got)
	}
}

func TestCatalog_ListError(t *testing.T) {
	src := &fakeSource[model.Centre]{listErr: errors.New("boom")}
	cat := newCentres(src, CatalogOptions{})

	_, err := cat.List(context.Background())
	if err == nil || !strings.Contains(err.Error(), "centres") {
		t.Errorf("ожидается ошибка с именем справочника, получено %v", err)
	}
}

func TestCatalog_View(t *testing.T) {
	cat := newCentres(centresSource(23), CatalogOptions{})

	tests := []struct {
		name      string
		q         Query
		wantPage  int
		wantItems int
		wantTotal int
		wantStart int
		wantEnd   int
	}{
		{"первая страница", Query{Page: 1, PerPage: 10}, 1, 10, 3, 1, 10},
		{"последняя неполная", Query{Page: 3, PerPage: 10}, 3, 3, 3, 21, 23},
		{"за пределами сбрасывается", Query{Page: 9, PerPage: 10}, 1, 10, 3, 1, 10},
		{"размер по умолчанию", Query{Page: 2}, 2, 10, 3, 11, 20},
		{"фильтр", Query{Search: "centre 2", Page: 1, PerPage: 10}, 1, 4, 1, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := cat.View(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("View: %v", err)
			}
			if page.Page != tt.wantPage || len(page.Items) != tt.wantItems || page.TotalPages != tt.wantTotal {
				t.Errorf("page=%d items=%d total=%d, ожидается %d/%d/%d",
					page.Page, len(page.Items), page.TotalPages, tt.wantPage, tt.wantItems, tt.wantTotal)
			}
			if page.Start != tt.wantStart || page.End != tt.wantEnd {
				t.Errorf("диапазон %d-%d, ожидается %d-%d", page.Start, page.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCatalog_ViewEmpty(t *testing.T) {
	cat := newCentres(centresSource(0), CatalogOptions{})

	page, err := cat.View(context.Background(), Query{Page: 4, PerPage: 25})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(page.Items) != 0 || page.TotalPages != 0 || page.Start != 0 || page.End != 0 {
		t.Errorf("пустой список: %+v", page)
	}
}

func TestCatalog_Find(t *testing.T) {
	cat := newCentres(centresSource(2), CatalogOptions{})

	c, err := cat.Find(context.Background(), 2)
	if err != nil || c.ID != 2 {
		t.Fatalf("Find(2) = %+v, %v", c, err)
	}
	if _, err := cat.Find(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(42): ожидается ErrNotFound, получено %v", err)
	}
}

func TestCatalog_CreateRefetches(t *testing.T) {
	src := centresSource(1)
	changes := 0
	cat := newCentres(src, CatalogOptions{OnChange: func() { changes++ }})

	if _, err := cat.List(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := cat.Create(context.Background(), centre(2, "Nord")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cat.Wait()

	if changes != 1 {
		t.Errorf("OnChange вызван %d раз, ожидается 1", changes)
	}
	if got := src.lists.Load(); got != 2 {
		t.Errorf("обращений к List = %d, ожидается 2 (перезагрузка после изменения)", got)
	}
	items, _ := cat.List(context.Background())
	if len(items) != 2 {
		t.Errorf("после создания записей %d, ожидается 2", len(items))
	}
}

func TestCatalog_CreateDuringSlowLoad(t *testing.T) {
	src := centresSource(1)
	gate, started := make(chan struct{}), make(chan struct{})
	src.listGate, src.listStarted = gate, started
	cat := newCentres(src, CatalogOptions{TTL: time.Minute})
	ctx := context.Background()

	slow := make(chan []model.Centre)
	go func() {
		items, _ := cat.List(ctx)
		slow <- items
	}()
	<-started

	if err := cat.Create(ctx, centre(2, "Centre 02")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cat.Wait()
	close(gate)
	if got := len(<-slow); got != 1 {
		t.Errorf("начатая до изменения загрузка вернула %d записей, ожидается 1", got)
	}

	items, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("после изменения в кэше %d записей, ожидается 2", len(items))
	}
}

func TestCatalog_CreateValidation(t *testing.T) {
	src := centresSource(0)
	cat := newCentres(src, CatalogOptions{})

	err := cat.Create(context.Background(), model.Centre{Etat: 1})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидается ValidationError, получено %v", err)
	}
	if verr.Field != "titre" || verr.Key != "validation.required" {
		t.Errorf("ValidationError = %+v", verr)
	}
	if len(src.created) != 0 {
		t.Error("невалидная запись не должна уходить в API")
	}
}

func TestCatalog_UpdateError(t *testing.T) {
	src := centresSource(1)
	src.mutErr = errors.New("conflict")
	changes := 0
	cat := newCentres(src, CatalogOptions{OnChange: func() { changes++ }})

	if err := cat.Update(context.Background(), 1, centre(1, "Sud")); err == nil {
		t.Fatal("ожидается ошибка API")
	}
	if changes != 0 {
		t.Error("OnChange не должен вызываться при ошибке")
	}
	if cat.Pending() {
		t.Error("Pending должен сброситься после ошибки")
	}
}

func TestCatalog_DeleteRequiresConfirmation(t *testing.T) {
	src := centresSource(1)
	cat := newCentres(src, CatalogOptions{})

	if err := cat.Delete(context.Background(), 1, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Errorf("без подтверждения: ожидается ErrConfirmationRequired, получено %v", err)
	}
	if err := cat.Delete(context.Background(), 1, true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cat.Wait()
	if len(src.deleted) != 1 || src.deleted[0] != 1 {
		t.Errorf("deleted = %v", src.deleted)
	}
}

func TestCatalog_SingleMutationInFlight(t *testing.T) {
	src := centresSource(0)
	src.block = make(chan struct{})
	cat := newCentres(src, CatalogOptions{})

	done := make(chan error, 1)
	go func() {
		done <- cat.Create(context.Background(), centre(1, "A"))
	}()

	// Ждём, пока первая операция займёт слот
	deadline := time.Now().Add(2 * time.Second)
	for !cat.Pending() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !cat.Pending() {
		t.Fatal("первая операция не стартовала")
	}

	if err := cat.Delete(context.Background(), 1, true); !errors.Is(err, ErrMutationPending) {
		t.Errorf("вторая операция: ожидается ErrMutationPending, получено %v", err)
	}

	close(src.block)
	if err := <-done; err != nil {
		t.Fatalf("Create: %v", err)
	}
	cat.Wait()
}

func TestCatalog_Export(t *testing.T) {
	cat := newCentres(centresSource(3), CatalogOptions{})
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cat.now = func() time.Time { return day }

	columns := []export.Column[model.Centre]{
		{Key: "id", Value: func(c model.Centre) any { return c.ID }},
		{Key: "titre", Label: "Titre", Value: func(c model.Centre) any { return c.Titre }},
	}

	t.Run("csv", func(t *testing.T) {
		file, err := cat.Export(context.Background(), "centre 02", columns, ExportCSV)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if file.Name != "centres_2026-03-14.csv" {
			t.Errorf("Name = %q", file.Name)
		}
		if !strings.HasPrefix(file.ContentType, "text/csv") {
			t.Errorf("ContentType = %q", file.ContentType)
		}
		if !strings.Contains(string(file.Data), "Centre 02") || strings.Contains(string(file.Data), "Centre 03") {
			t.Errorf("CSV должен содержать только отфильтрованные записи: %q", file.Data)
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := cat.Export(context.Background(), "", columns, ExportXLSX)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if !strings.HasSuffix(file.Name, ".xlsx") || len(file.Data) == 0 {
			t.Errorf("XLSX: %q, %d байт", file.Name, len(file.Data))
		}
	})

	t.Run("пустой набор", func(t *testing.T) {
		if _, err := cat.Export(context.Background(), "нет такого", columns, ExportCSV); !errors.Is(err, export.ErrEmptyExport) {
			t.Errorf("ожидается ErrEmptyExport, получено %v", err)
		}
	})

	t.Run("неизвестный формат", func(t *testing.T) {
		if _, err := cat.Export(context.Background(), "", columns, "pdf"); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ожидается ErrUnknownFormat, получено %v", err)
		}
	})
}
