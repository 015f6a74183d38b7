package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexdesk/lexdesk/internal/operation"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func result(id string, at time.Time) operation.Result {
	score := 85
	return operation.Result{
		ID:         id,
		Content:    "conteúdo " + id,
		Confidence: 0.85,
		CreatedAt:  at,
		Details: operation.Details{
			Score:  &score,
			Issues: []string{"issue"},
		},
	}
}

func TestRecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(ctx, operation.AnalyzeDocument, operation.PathLocal, result("a", base)))
	require.NoError(t, j.Record(ctx, operation.GenerateText, operation.PathRemote, result("b", base.Add(time.Minute))))

	entries, err := j.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, operation.GenerateText, entries[0].Operation)
	assert.Equal(t, operation.PathRemote, entries[0].Path)
	assert.Equal(t, base.Add(time.Minute), entries[0].CreatedAt)

	assert.Equal(t, "a", entries[1].ID)
	assert.Equal(t, "conteúdo a", entries[1].Content)
	assert.InDelta(t, 0.85, entries[1].Confidence, 1e-9)
	require.NotNil(t, entries[1].Details.Score)
	assert.Equal(t, 85, *entries[1].Details.Score)
	assert.Equal(t, []string{"issue"}, entries[1].Details.Issues)
}

func TestListFilterAndLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		op := operation.SummarizeText
		if i%2 == 0 {
			op = operation.AnalyzeContract
		}
		require.NoError(t, j.Record(ctx, op, operation.PathLocal, result(fmt.Sprint(i), base.Add(time.Duration(i)*time.Second))))
	}

	entries, err := j.List(ctx, operation.AnalyzeContract, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"8", "6", "4"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestDuplicateIDFails(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, operation.GenerateText, operation.PathLocal, result("dup", time.Now())))
	assert.Error(t, j.Record(ctx, operation.GenerateText, operation.PathLocal, result("dup", time.Now())))
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, operation.GenerateText, operation.PathLocal, result("kept", time.Now())))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].ID)
}
