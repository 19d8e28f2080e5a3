package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/Sanjit42/naming-service/internal/domain"
)

type DataSeeder struct {
	store   domain.InternStore
	batches domain.BatchStore
	rnd     *rand.Rand
	out     io.Writer
}

// NewDataSeeder seeds through the given stores. batches may be nil.
func NewDataSeeder(store domain.InternStore, batches domain.BatchStore, seed int64, out io.Writer) *DataSeeder {
	if out == nil {
		out = io.Discard
	}
	return &DataSeeder{
		store:   store,
		batches: batches,
		rnd:     rand.New(rand.NewSource(seed)),
		out:     out,
	}
}

var (
	firstNames = []string{"Asha", "Ravi", "Meera", "Karan", "Nisha", "Arjun", "Priya", "Vikram", "Sneha", "Rahul", "Ananya", "Rohan"}
	lastNames  = []string{"Sharma", "Iyer", "Patel", "Reddy", "Nair", "Gupta", "Das", "Menon", "Rao", "Singh"}
	genders    = []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderOther}
)

// SeedStats summarises a seeding run.
type SeedStats struct {
	Batches int
	Interns int
	Skipped int
}

// SeedData creates numBatches batches and internsPerBatch interns in each.
// Emp ids start at firstEmpID; ids already taken are skipped.
func (ds *DataSeeder) SeedData(ctx context.Context, numBatches, internsPerBatch int, firstEmpID int64) (SeedStats, error) {
	start := time.Now()
	fmt.Fprintln(ds.out, "Seeding data...")

	var stats SeedStats

	// 1. Batches
	if ds.batches != nil {
		base := time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC)
		for b := 1; b <= numBatches; b++ {
			startDate := base.AddDate(0, 6*(b-1), 0)
			batch := &domain.Batch{
				BatchName: fmt.Sprintf("Batch %d", b),
				StartDate: startDate,
				EndDate:   startDate.AddDate(0, 5, 0),
			}
			if err := ds.batches.CreateBatch(ctx, batch); err != nil {
				return stats, fmt.Errorf("failed to insert batch %d: %w", b, err)
			}
			stats.Batches++
		}
		fmt.Fprintf(ds.out, "Created %d batches\n", stats.Batches)
	}

	// 2. Interns with their emails and identity links
	empID := firstEmpID
	for b := 1; b <= numBatches; b++ {
		for i := 0; i < internsPerBatch; i++ {
			in := ds.randomIntern(empID, b)
			empID++

			err := ds.store.Save(ctx, in)
			if errors.Is(err, domain.ErrDuplicateEmpID) {
				stats.Skipped++
				continue
			}
			if err != nil {
				return stats, fmt.Errorf("failed to insert intern %d: %w", in.EmpID, err)
			}
			stats.Interns++
		}
	}
	fmt.Fprintf(ds.out, "Created %d interns (%d skipped)\n", stats.Interns, stats.Skipped)
	fmt.Fprintf(ds.out, "Done in %v\n", time.Since(start))

	return stats, nil
}

func (ds *DataSeeder) randomIntern(empID int64, batch int) *domain.Intern {
	first := firstNames[ds.rnd.Intn(len(firstNames))]
	last := lastNames[ds.rnd.Intn(len(lastNames))]
	handle := strings.ToLower(first + "." + last)
	user := fmt.Sprintf("%s%d", strings.ToLower(first), empID)

	in := domain.NewInternTemplate()
	in.EmpID = empID
	in.DisplayName = first + " " + last[:1]
	in.FirstName = first
	in.LastName = last
	in.Batch = batch
	in.DOB = time.Date(1995+ds.rnd.Intn(8), time.Month(1+ds.rnd.Intn(12)), 1+ds.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
	in.Gender = genders[ds.rnd.Intn(len(genders))]
	in.PhoneNumber = fmt.Sprintf("9%09d", ds.rnd.Int63n(1_000_000_000))
	in.Emails[0].Address = handle + "@thoughtworks.com"
	in.Emails[1].Address = fmt.Sprintf("%s%d@example.com", handle, empID%100)
	for _, p := range domain.Providers {
		in.Link(p).Username = user
	}
	return in
}

// ClearData removes every intern when the store supports it.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	fmt.Fprintln(ds.out, "Clearing data...")

	r, ok := ds.store.(domain.Resetter)
	if !ok {
		return fmt.Errorf("store %T cannot be cleared", ds.store)
	}
	if err := r.Reset(ctx); err != nil {
		return fmt.Errorf("failed to clear interns: %w", err)
	}

	fmt.Fprintln(ds.out, "Cleared interns")
	return nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetXLarge SeedPreset = "xlarge"
)

// GetPresetConfig returns configuration for a preset
func GetPresetConfig(preset SeedPreset) (numBatches, internsPerBatch int) {
	switch preset {
	case PresetSmall:
		return 2, 10
	case PresetMedium:
		return 5, 50
	case PresetLarge:
		return 10, 100
	case PresetXLarge:
		return 20, 500
	default:
		return 5, 50
	}
}
