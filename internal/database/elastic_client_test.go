package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjit42/naming-service/internal/domain"
)

func querySource(t *testing.T, q domain.Query) string {
	t.Helper()
	src, err := BuildElasticQuery(q).Source()
	require.NoError(t, err)
	b, err := json.Marshal(src)
	require.NoError(t, err)
	return string(b)
}

func TestBuildElasticQuery(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		assert.JSONEq(t, `{"bool":{}}`, querySource(t, domain.Query{}))
	})

	t.Run("search term becomes should clauses", func(t *testing.T) {
		src := querySource(t, domain.Query{AnyOf: []domain.Predicate{
			{Field: domain.FieldEmpID, Comparison: domain.Contains, Value: "12"},
			{Field: domain.FieldEmail, Comparison: domain.Contains, Value: "a*b"},
		}})
		assert.Contains(t, src, `"minimum_should_match":"1"`)
		assert.Contains(t, src, `"emp_id_text"`)
		assert.Contains(t, src, `"emails.address"`)
		assert.Contains(t, src, `*12*`)
		assert.Contains(t, src, `*a\\*b*`)
		assert.NotContains(t, src, `"filter"`)
	})

	t.Run("filters become term filters", func(t *testing.T) {
		src := querySource(t, domain.Query{AllOf: []domain.Predicate{
			{Field: domain.FieldBatch, Comparison: domain.Equals, Value: "3"},
		}})
		assert.JSONEq(t, `{"bool":{"filter":{"term":{"batch":3}}}}`, src)
	})

	t.Run("unparseable value matches nothing", func(t *testing.T) {
		src := querySource(t, domain.Query{AllOf: []domain.Predicate{
			{Field: domain.FieldDOB, Comparison: domain.Equals, Value: "yesterday"},
		}})
		assert.JSONEq(t, `{"bool":{"filter":{"match_none":{}}}}`, src)
	})

	t.Run("dates and genders are normalised", func(t *testing.T) {
		src := querySource(t, domain.Query{AllOf: []domain.Predicate{
			{Field: domain.FieldDOB, Comparison: domain.Equals, Value: "10/03/2001"},
			{Field: domain.FieldGender, Comparison: domain.Equals, Value: "FEMALE"},
		}})
		assert.Contains(t, src, `{"term":{"dob":"2001-03-10"}}`)
		assert.Contains(t, src, `{"term":{"gender":"female"}}`)
	})
}

func TestInternDocRoundTrip(t *testing.T) {
	in := domain.NewInternTemplate()
	in.ID = 9
	in.EmpID = 16001
	in.FirstName = "Asha"
	in.DOB = time.Date(2000, time.May, 4, 0, 0, 0, 0, time.UTC)
	in.Gender = domain.GenderFemale
	in.Emails[0].Address = "asha@thoughtworks.com"
	in.Slack.Username = "asha"
	in.Dropbox = nil

	doc := NewInternDoc(in)
	assert.Equal(t, "16001", doc.EmpIDText)
	assert.Equal(t, "2000-05-04", doc.DOB)
	assert.Nil(t, doc.DropboxUsername)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded InternDoc
	require.NoError(t, json.Unmarshal(b, &decoded))

	out := decoded.Intern()
	assert.Equal(t, in.EmpID, out.EmpID)
	assert.Equal(t, in.DOB, out.DOB)
	assert.Equal(t, domain.GenderFemale, out.Gender)
	require.NotNil(t, out.Slack)
	assert.Equal(t, "asha", out.Slack.Username)
	assert.Nil(t, out.Dropbox)
	email, ok := out.EmailByCategory(domain.EmailCategoryThoughtWorks)
	require.True(t, ok)
	assert.Equal(t, "asha@thoughtworks.com", email.Address)
}

// fakeSearchServer answers _search requests from docs, honouring size and
// search_after on the id sort.
func fakeSearchServer(t *testing.T, docs []InternDoc, requests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		var body struct {
			Size        int           `json:"size"`
			SearchAfter []interface{} `json:"search_after"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		var after int64
		if len(body.SearchAfter) > 0 {
			after = int64(body.SearchAfter[0].(float64))
		}
		hits := []map[string]interface{}{}
		for _, d := range docs {
			if d.ID > after && len(hits) < body.Size {
				hits = append(hits, map[string]interface{}{
					"_index":  "interns",
					"_id":     fmt.Sprint(d.ID),
					"_source": d,
					"sort":    []interface{}{d.ID},
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"took": 1,
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": len(docs), "relation": "eq"},
				"hits":  hits,
			},
		}))
	}))
}

func TestFindPagesThroughAllHits(t *testing.T) {
	var docs []InternDoc
	for id := int64(1); id <= 5; id++ {
		in := domain.NewInternTemplate()
		in.ID = id
		in.EmpID = 16000 + id
		in.FirstName = "Intern"
		docs = append(docs, NewInternDoc(in))
	}

	var requests int32
	srv := fakeSearchServer(t, docs, &requests)
	defer srv.Close()

	client, err := elastic.NewClient(
		elastic.SetURL(srv.URL),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	require.NoError(t, err)

	idx := NewInternIndex(client, "interns")
	idx.pageSize = 2

	interns, err := idx.Find(context.Background(), domain.Query{})
	require.NoError(t, err)
	require.Len(t, interns, 5)
	for i, in := range interns {
		assert.Equal(t, int64(i+1), in.ID)
		assert.Equal(t, int64(16001+i), in.EmpID)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}
