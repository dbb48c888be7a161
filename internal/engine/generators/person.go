// Package generators produces synthetic records for the tabular writers.
package generators

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ivanov-dv/data-generator/internal/engine"
)

var _ engine.Generator = (*Person)(nil)

var personHeader = []string{
	"first_name",
	"last_name",
	"gender",
	"weight",
	"username",
	"email",
	"password",
	"birthdate",
	"height",
	"nationality",
}

var (
	birthdateMin = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
	birthdateMax = time.Date(2006, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Person generates fake personal data, one person per record.
type Person struct {
	seed uint64
}

// NewPerson creates a person generator. Every sequence of a non-zero seed
// yields the same records; zero selects a random seed per sequence.
func NewPerson(seed uint64) *Person {
	return &Person{seed: seed}
}

func (p *Person) Header() []string {
	return personHeader
}

func (p *Person) Generate(ctx context.Context, count int) iter.Seq[engine.Record] {
	return func(yield func(engine.Record) bool) {
		faker := gofakeit.New(p.seed)
		for range count {
			if ctx.Err() != nil {
				return
			}
			if !yield(record(faker)) {
				return
			}
		}
	}
}

func record(f *gofakeit.Faker) engine.Record {
	return engine.Record{
		f.FirstName(),
		f.LastName(),
		f.Gender(),
		f.IntRange(45, 130),
		f.Username(),
		f.Email(),
		f.Password(true, true, true, false, false, 12),
		f.DateRange(birthdateMin, birthdateMax).Format(time.DateOnly),
		math.Round(f.Float64Range(1.5, 2.05)*100) / 100,
		f.Country(),
	}
}
