// Package seed populates the users and products dimensions the pipeline
// samples from. Seeding is idempotent: existing rows are kept and the
// tables are topped up to the configured counts.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/sink"
	"github.com/streamforge/streamforge/pkg/types"
)

// Inserts go out in chunks so a large seed never builds one giant statement.
const chunkSize = 500

var (
	countries = []string{"US", "UK", "DE", "FR", "CA", "AU", "JP", "BR", "IN", "RU"}

	productCategories = []string{
		"Electronics", "Books", "Clothing", "Home & Garden",
		"Sports", "Toys", "Beauty", "Automotive",
	}
)

// Seeder fills the dimension tables through the same sink the pipeline
// writes to.
type Seeder struct {
	sink     sink.Sink
	users    int
	products int

	// fakerSeed pins the generated rows for tests. Zero seeds randomly.
	fakerSeed uint64
}

// NewSeeder creates a seeder for the configured target counts.
func NewSeeder(s sink.Sink, cfg config.SeedConfig) *Seeder {
	return &Seeder{sink: s, users: cfg.Users, products: cfg.Products}
}

// Run creates the schema and tops up both dimensions in parallel.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.sink.EnsureSchema(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.seedUsers(ctx) })
	g.Go(func() error { return s.seedProducts(ctx) })
	return g.Wait()
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	existing, err := s.maxID(ctx, "users", "user_id")
	if err != nil {
		return err
	}
	if existing >= uint64(s.users) {
		log.Infof("users already seeded (%d present, target %d)", existing, s.users)
		return nil
	}

	faker := gofakeit.New(s.fakerSeed)
	now := time.Now().UTC()
	earliest := now.AddDate(-2, 0, 0)

	batch := make([]types.User, 0, chunkSize)
	for id := existing + 1; id <= uint64(s.users); id++ {
		signup := faker.DateRange(earliest, now)
		batch = append(batch, types.User{
			UserID:     id,
			Name:       faker.Name(),
			Email:      faker.Email(),
			Country:    faker.RandomString(countries),
			SignupDate: time.Date(signup.Year(), signup.Month(), signup.Day(), 0, 0, 0, 0, time.UTC),
		})
		if len(batch) == chunkSize {
			if err := s.sink.InsertUsers(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.sink.InsertUsers(ctx, batch); err != nil {
			return err
		}
	}

	log.Infof("seeded users %d..%d", existing+1, s.users)
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	existing, err := s.maxID(ctx, "products", "product_id")
	if err != nil {
		return err
	}
	if existing >= uint64(s.products) {
		log.Infof("products already seeded (%d present, target %d)", existing, s.products)
		return nil
	}

	faker := gofakeit.New(s.fakerSeed)

	batch := make([]types.Product, 0, chunkSize)
	for id := existing + 1; id <= uint64(s.products); id++ {
		batch = append(batch, types.Product{
			ProductID: id,
			Name:      faker.ProductName(),
			Category:  faker.RandomString(productCategories),
			Price:     faker.Price(5, 500),
		})
		if len(batch) == chunkSize {
			if err := s.sink.InsertProducts(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.sink.InsertProducts(ctx, batch); err != nil {
			return err
		}
	}

	log.Infof("seeded products %d..%d", existing+1, s.products)
	return nil
}

// maxID reads the current top id. Seeding is a one-shot tool, so unlike the
// cycle loop a failed query is surfaced instead of degraded.
func (s *Seeder) maxID(ctx context.Context, table, column string) (uint64, error) {
	v, err := s.sink.Scalar(ctx, fmt.Sprintf("SELECT max(%s) FROM %s", column, table))
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed max %s scalar %q: %w", column, v, err)
	}
	return n, nil
}
