package services

import (
	"context"
	"sync"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/listing"

	"golang.org/x/sync/errgroup"
)

const RecentLimit = 5

type DashboardAPI interface {
	DashboardStats(ctx context.Context, jar *apiclient.Jar) (domain.DashboardStats, error)
	StoreStats(ctx context.Context, jar *apiclient.Jar) (domain.StoreStats, error)
	Activities(ctx context.Context, jar *apiclient.Jar) ([]domain.Activity, error)
	Applications(ctx context.Context, jar *apiclient.Jar) ([]domain.SellerApplication, error)
	Products(ctx context.Context, jar *apiclient.Jar, rt apiclient.ProductRoutes) ([]domain.Product, error)
}

// Failure names the overview part that fell back to its zero value.
type Failure struct {
	Part string
	Err  error
}

type AdminOverview struct {
	Stats          domain.DashboardStats
	RecentActivity []domain.Activity
	Pending        []domain.SellerApplication
	PendingCount   int
	Failures       []Failure
}

type StoreOverview struct {
	Stats          domain.StoreStats
	RecentProducts []domain.Product
	Failures       []Failure
}

type DashboardService struct {
	API DashboardAPI
}

func NewDashboardService(api DashboardAPI) *DashboardService {
	return &DashboardService{API: api}
}

// fanout runs the parts concurrently. A failing part is recorded and never
// cancels its siblings.
type fanout struct {
	g        errgroup.Group
	mu       sync.Mutex
	failures []Failure
}

func (f *fanout) run(part string, fn func() error) {
	f.g.Go(func() error {
		if err := fn(); err != nil {
			f.mu.Lock()
			f.failures = append(f.failures, Failure{Part: part, Err: err})
			f.mu.Unlock()
		}
		return nil
	})
}

func (f *fanout) wait() []Failure {
	_ = f.g.Wait()
	return f.failures
}

func (s *DashboardService) Admin(ctx context.Context, jar *apiclient.Jar) AdminOverview {
	var ov AdminOverview
	var f fanout
	f.run("stats", func() error {
		st, err := s.API.DashboardStats(ctx, jar)
		if err != nil {
			return err
		}
		ov.Stats = st
		return nil
	})
	f.run("activities", func() error {
		rows, err := s.API.Activities(ctx, jar)
		if err != nil {
			return err
		}
		ov.RecentActivity = first(ActivityScreen.Sort(rows, "created_at", listing.Desc), RecentLimit)
		return nil
	})
	f.run("applications", func() error {
		rows, err := s.API.Applications(ctx, jar)
		if err != nil {
			return err
		}
		var pending []domain.SellerApplication
		for _, a := range rows {
			if a.Status.Normalize() == domain.StatusPending {
				pending = append(pending, a)
			}
		}
		ov.PendingCount = len(pending)
		ov.Pending = first(ApplicationScreen.Sort(pending, "created_at", listing.Desc), RecentLimit)
		return nil
	})
	ov.Failures = f.wait()
	if ov.Stats.PendingApproval == 0 {
		ov.Stats.PendingApproval = ov.PendingCount
	}
	return ov
}

func (s *DashboardService) Store(ctx context.Context, jar *apiclient.Jar) StoreOverview {
	var ov StoreOverview
	var f fanout
	f.run("stats", func() error {
		st, err := s.API.StoreStats(ctx, jar)
		if err != nil {
			return err
		}
		ov.Stats = st
		return nil
	})
	f.run("products", func() error {
		rows, err := s.API.Products(ctx, jar, apiclient.OwnerProducts)
		if err != nil {
			return err
		}
		ov.RecentProducts = first(ProductScreen.Sort(rows, "created_at", listing.Desc), RecentLimit)
		return nil
	})
	ov.Failures = f.wait()
	return ov
}

func first[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
