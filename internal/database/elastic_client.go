package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/Sanjit42/naming-service/internal/domain"
)

// defaultPageSize is the number of hits fetched per search request.
const defaultPageSize = 1000

// InternDoc mirrors domain.Intern for ES storage. Dependents are flattened.
type InternDoc struct {
	ID              int64      `json:"id"`
	EmpID           int64      `json:"emp_id"`
	EmpIDText       string     `json:"emp_id_text"`
	DisplayName     string     `json:"display_name"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Batch           int        `json:"batch"`
	DOB             string     `json:"dob,omitempty"`
	Gender          string     `json:"gender"`
	PhoneNumber     string     `json:"phone_number"`
	Emails          []EmailDoc `json:"emails"`
	GithubUsername  *string    `json:"github_username,omitempty"`
	SlackUsername   *string    `json:"slack_username,omitempty"`
	DropboxUsername *string    `json:"dropbox_username,omitempty"`
}

// EmailDoc is an email embedded in an InternDoc.
type EmailDoc struct {
	Category string `json:"category"`
	Address  string `json:"address"`
}

// internMapping keeps text fields as keywords so wildcard and term queries are case sensitive.
const internMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "long"},
      "emp_id":           {"type": "long"},
      "emp_id_text":      {"type": "keyword"},
      "display_name":     {"type": "keyword"},
      "first_name":       {"type": "keyword"},
      "last_name":        {"type": "keyword"},
      "batch":            {"type": "integer"},
      "dob":              {"type": "date", "format": "yyyy-MM-dd"},
      "gender":           {"type": "keyword"},
      "phone_number":     {"type": "keyword"},
      "emails": {
        "properties": {
          "category": {"type": "keyword"},
          "address":  {"type": "keyword"}
        }
      },
      "github_username":  {"type": "keyword"},
      "slack_username":   {"type": "keyword"},
      "dropbox_username": {"type": "keyword"}
    }
  }
}`

// NewInternDoc flattens an intern for indexing.
func NewInternDoc(in *domain.Intern) InternDoc {
	doc := InternDoc{
		ID:          in.ID,
		EmpID:       in.EmpID,
		EmpIDText:   strconv.FormatInt(in.EmpID, 10),
		DisplayName: in.DisplayName,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Batch:       in.Batch,
		DOB:         domain.FormatDate(in.DOB),
		Gender:      string(in.Gender),
		PhoneNumber: in.PhoneNumber,
		Emails:      make([]EmailDoc, 0, len(in.Emails)),
	}
	for _, e := range in.Emails {
		doc.Emails = append(doc.Emails, EmailDoc{Category: e.Category, Address: e.Address})
	}
	if in.Github != nil {
		doc.GithubUsername = &in.Github.Username
	}
	if in.Slack != nil {
		doc.SlackUsername = &in.Slack.Username
	}
	if in.Dropbox != nil {
		doc.DropboxUsername = &in.Dropbox.Username
	}
	return doc
}

// Intern rebuilds the domain value. Dependent ids are not indexed and stay zero.
func (d InternDoc) Intern() domain.Intern {
	in := domain.Intern{
		ID:          d.ID,
		EmpID:       d.EmpID,
		DisplayName: d.DisplayName,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Batch:       d.Batch,
		Gender:      domain.Gender(d.Gender),
		PhoneNumber: d.PhoneNumber,
	}
	if d.DOB != "" {
		in.DOB, _ = time.Parse("2006-01-02", d.DOB)
	}
	for _, e := range d.Emails {
		in.Emails = append(in.Emails, domain.Email{InternID: d.ID, Category: e.Category, Address: e.Address})
	}
	links := map[domain.Provider]*string{
		domain.ProviderGithub:  d.GithubUsername,
		domain.ProviderSlack:   d.SlackUsername,
		domain.ProviderDropbox: d.DropboxUsername,
	}
	for p, username := range links {
		if username != nil {
			in.SetLink(p, &domain.IdentityLink{InternID: d.ID, Username: *username})
		}
	}
	return in
}

// InternIndex wraps olivere/elastic as a search index of interns.
type InternIndex struct {
	client   *elastic.Client
	index    string
	pageSize int
}

// NewElasticSearchClient connects to Elasticsearch 7.x at url.
func NewElasticSearchClient(url string) (*elastic.Client, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return client, nil
}

// NewInternIndex uses index on client.
func NewInternIndex(client *elastic.Client, index string) *InternIndex {
	return &InternIndex{client: client, index: index, pageSize: defaultPageSize}
}

var _ domain.InternIndexer = (*InternIndex)(nil)

// EnsureIndex creates the index with its mapping when it does not exist.
func (es *InternIndex) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}
	if _, err := es.client.CreateIndex(es.index).BodyString(internMapping).Do(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", es.index, err)
	}
	return nil
}

// Index bulk indexes interns using the intern id as document id.
func (es *InternIndex) Index(ctx context.Context, interns []domain.Intern) error {
	bulkRequest := es.client.Bulk()

	for i := range interns {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(strconv.FormatInt(interns[i].ID, 10)).
			Doc(NewInternDoc(&interns[i]))
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}
	return nil
}

// Remove deletes the document of an intern. A missing document is not an error.
func (es *InternIndex) Remove(ctx context.Context, id int64) error {
	_, err := es.client.Delete().
		Index(es.index).
		Id(strconv.FormatInt(id, 10)).
		Refresh("true").
		Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("failed to delete intern %d: %w", id, err)
	}
	return nil
}

// Find runs q against the index and returns every match ordered by id.
// Results are paged with search_after on the id sort.
func (es *InternIndex) Find(ctx context.Context, q domain.Query) ([]domain.Intern, error) {
	interns := []domain.Intern{}
	var after []interface{}
	for {
		search := es.client.Search().
			Index(es.index).
			Query(BuildElasticQuery(q)).
			Sort("id", true).
			Size(es.pageSize)
		if after != nil {
			search = search.SearchAfter(after...)
		}
		searchResult, err := search.Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		if searchResult.Hits == nil {
			return interns, nil
		}

		hits := searchResult.Hits.Hits
		for _, hit := range hits {
			var doc InternDoc
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, fmt.Errorf("decode intern %s: %w", hit.Id, err)
			}
			interns = append(interns, doc.Intern())
		}
		if len(hits) < es.pageSize {
			return interns, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

// esField maps a logical field to the document field used for a comparison.
func esField(f domain.Field, c domain.Comparison) string {
	switch f {
	case domain.FieldEmpID:
		if c == domain.Contains {
			return "emp_id_text"
		}
		return "emp_id"
	case domain.FieldEmail:
		return "emails.address"
	}
	return string(f)
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// BuildElasticQuery compiles q into a bool query: AllOf predicates become
// filters and AnyOf predicates become should clauses of which one must match.
func BuildElasticQuery(q domain.Query) elastic.Query {
	bq := elastic.NewBoolQuery()
	for _, p := range q.AllOf {
		bq.Filter(predicateQuery(p))
	}
	if len(q.AnyOf) > 0 {
		for _, p := range q.AnyOf {
			bq.Should(predicateQuery(p))
		}
		bq.MinimumShouldMatch("1")
	}
	return bq
}

func predicateQuery(p domain.Predicate) elastic.Query {
	ref, ok := p.Field.Ref()
	if !ok {
		return elastic.NewMatchNoneQuery()
	}
	field := esField(p.Field, p.Comparison)

	if p.Comparison == domain.Contains {
		return elastic.NewWildcardQuery(field, "*"+wildcardEscaper.Replace(p.Value)+"*")
	}

	v, ok := domain.Coerce(ref.Kind, p.Value)
	if !ok {
		return elastic.NewMatchNoneQuery()
	}
	if d, isDate := v.(time.Time); isDate {
		v = domain.FormatDate(d)
	}
	return elastic.NewTermQuery(field, v)
}
