package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/metrics"
	"github.com/Sanjit42/naming-service/internal/repository/memstore"
)

func newImportService() (*ImportService, *memstore.Store, *fakeIndex, *fakePublisher) {
	store := memstore.New()
	idx := newFakeIndex()
	pub := &fakePublisher{}
	svc := NewImportService(newTestValidator(), store,
		WithRecorder(store),
		WithPublisher(pub),
		WithIndexer(idx),
		WithImportMetrics(metrics.New()),
	)
	clock := fixedNow
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	svc.newID = func() string { return "run-1" }
	return svc, store, idx, pub
}

func TestImportText(t *testing.T) {
	ctx := context.Background()
	svc, store, idx, pub := newImportService()

	text := fullHeader +
		"\r\n11,test,Abhirup,,2,10-03-2001,male,a@thoughtworks.com,a@gmail.com,9338117863,gh11,sl11,db11" +
		"\r\n,test,Abhirup,,2,10-03-2001,male,,,9338117863,,," +
		"\r\n12,test,Ravi,,2,10-03-2001,female,r@thoughtworks.com,,9338117864,gh12,sl12,db12"

	out, err := svc.ImportText(ctx, text)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Result.TotalRows)
	assert.Equal(t, 2, out.Result.SuccessRowsNumber)
	assert.Equal(t, 1, out.Result.FailedRowsNumber)
	assert.Len(t, out.Saved, 2)

	assert.Equal(t, "run-1", out.Run.RunID)
	assert.Equal(t, SourceText, out.Run.Source)
	assert.Equal(t, 1.0, out.Run.Duration)
	assert.Equal(t, fixedNow.Add(time.Second), out.Run.StartedAt)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, idx.size())

	require.Len(t, pub.runs, 1)
	assert.Equal(t, "run-1", pub.runs[0].RunID)

	runs, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].SuccessRowsNumber)
}

func TestImportFileRejectedHeader(t *testing.T) {
	ctx := context.Background()
	svc, _, idx, pub := newImportService()

	out, err := svc.ImportFile(ctx, "roster.csv", strings.NewReader("emp_id,shoe_size\n1,9\n"))
	require.NoError(t, err)

	assert.False(t, out.Result.HeaderAccepted)
	assert.Equal(t, []string{"shoe_size"}, out.Result.InvalidHeader)
	assert.Equal(t, "roster.csv", out.Run.Source)
	assert.Empty(t, out.Saved)
	assert.Zero(t, idx.calls)
	assert.Len(t, pub.runs, 1)
}

func TestImportEmptyInput(t *testing.T) {
	svc, _, _, pub := newImportService()

	out, err := svc.ImportText(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Nil(t, out)
	assert.Empty(t, pub.runs)
}

func TestImportIndexFailureKeepsRows(t *testing.T) {
	ctx := context.Background()
	svc, store, idx, _ := newImportService()
	idx.err, idx.failFor = errIndexDown, 1

	text := fullHeader + "\r\n11,test,Abhirup,,2,10-03-2001,male,,,9338117863,,,"
	out, err := svc.ImportText(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Result.SuccessRowsNumber)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListRunsWithoutRecorder(t *testing.T) {
	svc := NewImportService(newTestValidator(), memstore.New())
	runs, err := svc.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
