package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjit42/naming-service/internal/domain"
)

func newMockRepo(t *testing.T) (*internRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &internRepository{db: db}, mock
}

func sampleIntern() *domain.Intern {
	in := domain.NewInternTemplate()
	in.EmpID = 16001
	in.DisplayName = "Asha"
	in.FirstName = "Asha"
	in.Batch = 3
	in.DOB = time.Date(2000, time.May, 4, 0, 0, 0, 0, time.UTC)
	in.Gender = domain.GenderFemale
	in.Emails[0].Address = "asha@thoughtworks.com"
	in.Github.Username = "asha-gh"
	in.Slack.Username = "asha-sl"
	in.Dropbox.Username = "asha-db"
	return in
}

func returningID(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

func TestSaveCommitsAggregate(t *testing.T) {
	repo, mock := newMockRepo(t)
	in := sampleIntern()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO interns ").WillReturnRows(returningID(7))
	mock.ExpectQuery("INSERT INTO emails ").WithArgs(int64(7), domain.EmailCategoryThoughtWorks, "asha@thoughtworks.com").WillReturnRows(returningID(11))
	mock.ExpectQuery("INSERT INTO emails ").WillReturnRows(returningID(12))
	mock.ExpectQuery("INSERT INTO github_info ").WithArgs(int64(7), "asha-gh").WillReturnRows(returningID(21))
	mock.ExpectQuery("INSERT INTO slack_info ").WillReturnRows(returningID(22))
	mock.ExpectQuery("INSERT INTO dropbox_info ").WillReturnRows(returningID(23))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), in))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(7), in.ID)
	assert.Equal(t, int64(11), in.Emails[0].ID)
	assert.Equal(t, int64(7), in.Emails[1].InternID)
	assert.Equal(t, int64(21), in.Github.ID)
	assert.Equal(t, int64(23), in.Dropbox.ID)
}

func TestSaveRollsBackWhenDependentInsertFails(t *testing.T) {
	t.Run("email insert", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		in := sampleIntern()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO interns ").WillReturnRows(returningID(7))
		mock.ExpectQuery("INSERT INTO emails ").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), in)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrDuplicateEmpID)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.Zero(t, in.ID)
		assert.Zero(t, in.Emails[0].ID)
		assert.Zero(t, in.Emails[0].InternID)
	})

	t.Run("link insert", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		in := sampleIntern()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO interns ").WillReturnRows(returningID(7))
		mock.ExpectQuery("INSERT INTO emails ").WillReturnRows(returningID(11))
		mock.ExpectQuery("INSERT INTO emails ").WillReturnRows(returningID(12))
		mock.ExpectQuery("INSERT INTO github_info ").WillReturnRows(returningID(21))
		mock.ExpectQuery("INSERT INTO slack_info ").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), in)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Contains(t, err.Error(), "insert slack link")
		require.NoError(t, mock.ExpectationsWereMet())

		assert.Zero(t, in.ID)
		assert.Zero(t, in.Emails[1].ID)
		assert.Zero(t, in.Github.ID)
		assert.Zero(t, in.Github.InternID)
	})
}

func TestSaveMapsUniqueViolationToDuplicateEmpID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO interns ").
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "interns_emp_id_key"})
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleIntern())
	assert.ErrorIs(t, err, domain.ErrDuplicateEmpID)
	assert.Equal(t, "Emp id has already been taken", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingIntern(t *testing.T) {
	repo, mock := newMockRepo(t)
	in := sampleIntern()
	in.ID = 99
	in.Emails[0].ID = 5
	in.Emails[0].InternID = 99

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE interns SET ").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(99), in.ID)
	assert.Equal(t, int64(5), in.Emails[0].ID)
}

func TestUpdateReplacesDependents(t *testing.T) {
	repo, mock := newMockRepo(t)
	in := sampleIntern()
	in.ID = 7

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE interns SET ").WillReturnResult(sqlmock.NewResult(0, 1))
	for _, table := range []string{"emails", "github_info", "slack_info", "dropbox_info"} {
		mock.ExpectExec("DELETE FROM " + table + " WHERE intern_id").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectQuery("INSERT INTO emails ").WillReturnRows(returningID(31))
	mock.ExpectQuery("INSERT INTO emails ").WillReturnRows(returningID(32))
	mock.ExpectQuery("INSERT INTO github_info ").WillReturnRows(returningID(41))
	mock.ExpectQuery("INSERT INTO slack_info ").WillReturnRows(returningID(42))
	mock.ExpectQuery("INSERT INTO dropbox_info ").WillReturnRows(returningID(43))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), in))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(32), in.Emails[1].ID)
	assert.Equal(t, int64(43), in.Dropbox.ID)
}

func TestDeleteMissingIntern(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	for _, table := range []string{"emails", "github_info", "slack_info", "dropbox_info"} {
		mock.ExpectExec("DELETE FROM " + table + " WHERE intern_id").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM interns WHERE id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAttachesDependentsToTheirInterns(t *testing.T) {
	repo, mock := newMockRepo(t)
	dob := time.Date(2000, time.May, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT i.id FROM interns i")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM interns WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows(internColumns).
			AddRow(1, 16001, "Asha", "Asha", "", 3, dob, "female", "9338117863").
			AddRow(2, 16002, "Ravi", "Ravi", "K", 3, dob, "male", ""))
	mock.ExpectQuery(regexp.QuoteMeta("FROM emails WHERE intern_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "category", "address"}).
			AddRow(11, 1, domain.EmailCategoryThoughtWorks, "asha@thoughtworks.com").
			AddRow(12, 2, domain.EmailCategoryThoughtWorks, "ravi@thoughtworks.com").
			AddRow(13, 1, domain.EmailCategoryPersonal, "asha@gmail.com"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM github_info WHERE intern_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "username"}).AddRow(21, 2, "ravi-gh"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM slack_info WHERE intern_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "username"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM dropbox_info WHERE intern_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "username"}).AddRow(31, 1, "asha-db"))

	interns, err := repo.Find(context.Background(), domain.Query{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, interns, 2)

	asha, ravi := interns[0], interns[1]
	assert.Equal(t, int64(16001), asha.EmpID)
	assert.Equal(t, domain.GenderFemale, asha.Gender)
	require.Len(t, asha.Emails, 2)
	assert.Equal(t, "asha@thoughtworks.com", asha.Emails[0].Address)
	assert.Equal(t, "asha@gmail.com", asha.Emails[1].Address)
	assert.Nil(t, asha.Github)
	require.NotNil(t, asha.Dropbox)
	assert.Equal(t, "asha-db", asha.Dropbox.Username)

	require.Len(t, ravi.Emails, 1)
	assert.Equal(t, "ravi@thoughtworks.com", ravi.Emails[0].Address)
	require.NotNil(t, ravi.Github)
	assert.Equal(t, "ravi-gh", ravi.Github.Username)
	assert.Nil(t, ravi.Slack)
	assert.Nil(t, ravi.Dropbox)
}

func TestFindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM interns WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows(internColumns))

	_, err := repo.FindByID(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBatchMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM batches WHERE id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_name", "start_date", "end_date"}))

	_, err = NewBatchRepository(db).GetBatch(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
