package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type stubDigest struct{ calls int }

func (s *stubDigest) DailyDigest(context.Context) (models.DailyReport, string) {
	s.calls++
	return models.DailyReport{TotalItems: 3}, "digest text"
}

type recordingNotifier struct {
	sent []models.OutboundMessageRequest
}

func (r *recordingNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	r.sent = append(r.sent, req)
	return nil
}

func TestRunDailyDigestSends(t *testing.T) {
	digest := &stubDigest{}
	notifier := &recordingNotifier{}
	s := NewScheduler("0 7 * * *", time.UTC, digest, notifier, "447700900001", nil)

	s.RunDailyDigest(context.Background())

	assert.Equal(t, 1, digest.calls)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.OutboundMessageRequest{To: "447700900001", Message: "digest text"}, notifier.sent[0])
}

func TestRunDailyDigestWithoutRecipient(t *testing.T) {
	digest := &stubDigest{}
	notifier := &recordingNotifier{}
	s := NewScheduler("0 7 * * *", time.UTC, digest, notifier, "", nil)

	s.RunDailyDigest(context.Background())
	assert.Equal(t, 1, digest.calls)
	assert.Empty(t, notifier.sent)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("every morning", time.UTC, &stubDigest{}, nil, "", nil)
	assert.Error(t, s.Start())

	s = NewScheduler("0 7 * * *", time.UTC, &stubDigest{}, nil, "", nil)
	require.NoError(t, s.Start())
	s.Stop()
}
