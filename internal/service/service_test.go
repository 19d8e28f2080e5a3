package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/importer"
	"github.com/Sanjit42/naming-service/internal/schema"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

const fullHeader = "emp_id,display_name,first_name,last_name,batch,dob,gender,thoughtworks_email,personal_email,phone_number,github_username,slack_username,dropbox_username"

func newTestValidator() *importer.RowValidator {
	return importer.NewRowValidator(schema.Default, importer.WithClock(func() time.Time { return fixedNow }))
}

func validIntern(empID int64) *domain.Intern {
	in := domain.NewInternTemplate()
	in.EmpID = empID
	in.DisplayName = "Asha"
	in.FirstName = "Asha"
	in.LastName = "Iyer"
	in.Batch = 3
	in.DOB = time.Date(2000, time.May, 4, 0, 0, 0, 0, time.UTC)
	in.Gender = domain.GenderFemale
	in.PhoneNumber = "9338117863"
	in.Emails[0].Address = "asha@thoughtworks.com"
	in.Github.Username = "asha-gh"
	return in
}

// fakeIndex is an in-memory InternIndexer that can be told to fail.
type fakeIndex struct {
	mu      sync.Mutex
	docs    map[int64]domain.Intern
	calls   int
	failFor int
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[int64]domain.Intern{}}
}

func (f *fakeIndex) Index(_ context.Context, interns []domain.Intern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && f.calls <= f.failFor {
		return f.err
	}
	for _, in := range interns {
		f.docs[in.ID] = in
	}
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Find(_ context.Context, q domain.Query) ([]domain.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Intern
	for _, in := range f.docs {
		in := in
		if q.Matches(&in) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeIndex) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakePublisher struct {
	runs []*domain.ImportRun
}

func (f *fakePublisher) PublishImportCompleted(_ context.Context, run *domain.ImportRun) error {
	f.runs = append(f.runs, run)
	return nil
}

var errIndexDown = errors.New("index unavailable")
