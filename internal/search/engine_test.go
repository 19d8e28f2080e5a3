package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/repository/memstore"
)

func intern(empID int64, first string, batch int, gender domain.Gender, personal, github string) *domain.Intern {
	return &domain.Intern{
		EmpID:       empID,
		DisplayName: first + "_display",
		FirstName:   first,
		Batch:       batch,
		DOB:         time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC),
		Gender:      gender,
		PhoneNumber: "9000000000",
		Emails: []domain.Email{
			{Category: domain.EmailCategoryThoughtWorks, Address: first + "@thoughtworks.com"},
			{Category: domain.EmailCategoryPersonal, Address: personal},
		},
		Github: &domain.IdentityLink{Username: github},
	}
}

func seed(t *testing.T) (*Engine, []domain.Intern) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	for _, in := range []*domain.Intern{
		intern(101, "Asha", 3, domain.GenderFemale, "asha@gmail.com", "asha-gh"),
		intern(102, "Ravi", 3, domain.GenderMale, "myemail@gmail.com", "ravi-gh"),
		intern(103, "Kiran", 4, domain.GenderMale, "kiran@yahoo.com", ""),
		intern(204, "Mohan", 3, domain.GenderMale, "mohan@gmail.com", "mohan-gh"),
	} {
		require.NoError(t, store.Save(ctx, in))
	}
	// an intern without any identity link
	bare := intern(305, "Zoya", 5, domain.GenderOther, "zoya@proton.me", "")
	bare.Github = nil
	require.NoError(t, store.Save(ctx, bare))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	return NewEngine(store), all
}

func empIDs(interns []domain.Intern) []int64 {
	ids := make([]int64, len(interns))
	for i, in := range interns {
		ids[i] = in.EmpID
	}
	return ids
}

func TestBuildQuery(t *testing.T) {
	t.Run("term searches every search field", func(t *testing.T) {
		q, err := BuildQuery("abc", nil)
		require.NoError(t, err)
		require.Len(t, q.AnyOf, len(domain.SearchFields))
		for _, p := range q.AnyOf {
			assert.Equal(t, domain.Contains, p.Comparison)
			assert.Equal(t, "abc", p.Value)
		}
		assert.Empty(t, q.AllOf)
	})

	t.Run("blank filters are skipped", func(t *testing.T) {
		q, err := BuildQuery("", Filters{"gender": "male", "batch": "  ", "email": ""})
		require.NoError(t, err)
		assert.Empty(t, q.AnyOf)
		assert.Equal(t, []domain.Predicate{
			{Field: domain.FieldGender, Comparison: domain.Equals, Value: "male"},
		}, q.AllOf)
	})

	t.Run("filters follow field order", func(t *testing.T) {
		q, err := BuildQuery("", Filters{"gender": "male", "batch": "3"})
		require.NoError(t, err)
		require.Len(t, q.AllOf, 2)
		assert.Equal(t, domain.FieldBatch, q.AllOf[0].Field)
		assert.Equal(t, domain.FieldGender, q.AllOf[1].Field)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := BuildQuery("", Filters{"nickname": "x"})
		assert.ErrorIs(t, err, domain.ErrUnknownFilter)
	})
}

func TestSearch(t *testing.T) {
	engine, all := seed(t)
	ctx := context.Background()

	t.Run("empty term matches everything", func(t *testing.T) {
		got, err := engine.Search(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, empIDs(all), empIDs(got))
	})

	t.Run("matches through a personal email only once", func(t *testing.T) {
		got, err := engine.Search(ctx, "email")
		require.NoError(t, err)
		assert.Equal(t, []int64{102}, empIDs(got))
	})

	t.Run("an intern matching through several dependents appears once", func(t *testing.T) {
		got, err := engine.Search(ctx, "asha")
		require.NoError(t, err)
		assert.Equal(t, []int64{101}, empIDs(got))
	})

	t.Run("emp id substring", func(t *testing.T) {
		got, err := engine.Search(ctx, "10")
		require.NoError(t, err)
		assert.Equal(t, []int64{101, 102, 103}, empIDs(got))
	})

	t.Run("case sensitive", func(t *testing.T) {
		got, err := engine.Search(ctx, "ASHA")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("interns without links remain searchable", func(t *testing.T) {
		got, err := engine.Search(ctx, "Zoya")
		require.NoError(t, err)
		assert.Equal(t, []int64{305}, empIDs(got))
	})

	t.Run("identity username", func(t *testing.T) {
		got, err := engine.Search(ctx, "-gh")
		require.NoError(t, err)
		assert.Equal(t, []int64{101, 102, 204}, empIDs(got))
	})
}

func TestFilter(t *testing.T) {
	engine, _ := seed(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters Filters
		want    []int64
	}{
		{"gender and batch intersect", Filters{"gender": "male", "batch": "3"}, []int64{102, 204}},
		{"empty value is ignored", Filters{"gender": "male", "batch": ""}, []int64{102, 103, 204}},
		{"no filters", Filters{}, []int64{101, 102, 103, 204, 305}},
		{"email equality", Filters{"email": "kiran@yahoo.com"}, []int64{103}},
		{"email substring does not match", Filters{"email": "kiran"}, []int64{}},
		{"github username", Filters{"github_username": "ravi-gh"}, []int64{102}},
		{"dob", Filters{"dob": "2000-01-02"}, []int64{101, 102, 103, 204, 305}},
		{"gender is case insensitive", Filters{"gender": "OTHERS"}, []int64{305}},
		{"numeric filter with text", Filters{"batch": "three"}, []int64{}},
		{"emp id", Filters{"emp_id": "204"}, []int64{204}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Filter(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, empIDs(got))
		})
	}
}

func TestQueryCombinesTermAndFilters(t *testing.T) {
	engine, _ := seed(t)

	got, err := engine.Query(context.Background(), "gmail", Filters{"gender": "male"})
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 204}, empIDs(got))

	_, err = engine.Query(context.Background(), "gmail", Filters{"unknown": "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownFilter)
}
