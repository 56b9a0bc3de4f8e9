package async

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

type fakeExtractor struct {
	delay       time.Duration
	inFlight    atomic.Int32
	peak        atomic.Int32
	sawDeadline atomic.Bool
}

func (f *fakeExtractor) Run(ctx context.Context, doc entity.Document) entity.ExtractionReport {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.peak.Load()
		if n <= old || f.peak.CompareAndSwap(old, n) {
			break
		}
	}
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline.Store(true)
	}
	time.Sleep(f.delay)
	return entity.ExtractionReport{
		Metadata: entity.DocumentMetadata{Path: doc.Path},
		Outcomes: []entity.ExtractionOutcome{{Strategy: constants.StrategyText, Status: constants.OutcomeSuccess}},
	}
}

func TestDocumentQueue_ProcessesAllInOrder(t *testing.T) {
	ext := &fakeExtractor{delay: 5 * time.Millisecond}
	q := NewDocumentQueue(context.Background(), ext, nil, WithWorkers(2), WithQueueSize(1), WithProcessTimeout(time.Second))

	for i := 0; i < 6; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Seq: i, Document: entity.Document{Path: fmt.Sprintf("d%d.pdf", i)}}))
	}
	require.NoError(t, q.Shutdown(context.Background()))

	done := q.Reports()
	require.Len(t, done, 6)
	for i, c := range done {
		assert.Equal(t, i, c.Job.Seq)
		assert.Equal(t, fmt.Sprintf("d%d.pdf", i), c.Report.Metadata.Path)
		assert.False(t, c.Job.SubmittedAt.IsZero())
	}
	assert.LessOrEqual(t, ext.peak.Load(), int32(2))
	assert.True(t, ext.sawDeadline.Load())
}

func TestDocumentQueue_RefusesAfterShutdown(t *testing.T) {
	q := NewDocumentQueue(context.Background(), &fakeExtractor{}, nil)
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	err := q.Enqueue(context.Background(), Job{Document: entity.Document{Path: "late.pdf"}})
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.Empty(t, q.Reports())
}

func TestDocumentQueue_ShutdownHonorsContext(t *testing.T) {
	q := NewDocumentQueue(context.Background(), &fakeExtractor{delay: 200 * time.Millisecond}, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{Document: entity.Document{Path: "slow.pdf"}}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)
}
