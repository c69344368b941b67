package mailer_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

// fakeSender records concurrency and fails for configured recipients.
type fakeSender struct {
	fail     map[string]bool
	panics   map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	jitter   bool
}

func (f *fakeSender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.jitter {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
	} else {
		time.Sleep(2 * time.Millisecond)
	}

	if f.panics[email.To[0]] {
		panic("transport exploded")
	}
	if f.fail[email.To[0]] {
		return "", errors.New("recipient rejected")
	}
	return "<" + email.To[0] + ">", nil
}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
}

func messages(n int) []*mailer.Email {
	out := make([]*mailer.Email, n)
	for i := range out {
		out[i] = &mailer.Email{
			To:      []string{fmt.Sprintf("user%d@x.io", i)},
			Subject: "s",
			Text:    "t",
		}
	}
	return out
}

func TestDispatcher_SendBulk(t *testing.T) {
	t.Parallel()

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{jitter: true}
		d := mailer.NewDispatcher(sender, mailer.WithBatchDelay(0))

		in := messages(23)
		results, err := d.SendBulk(context.Background(), in)
		require.NoError(t, err)
		require.Len(t, results, len(in))

		for i, r := range results {
			assert.Equal(t, in[i].To[0], r.Recipient)
			assert.Equal(t, "<"+in[i].To[0]+">", r.MessageID)
			assert.True(t, r.Success)
			assert.False(t, r.Timestamp.IsZero())
		}
	})

	t.Run("pauses between batches only", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			n          int
			wantPauses int
		}{
			{n: 1, wantPauses: 0},
			{n: 10, wantPauses: 0},
			{n: 11, wantPauses: 1},
			{n: 25, wantPauses: 2},
			{n: 50, wantPauses: 4},
		}

		for _, tt := range tests {
			rec := &sleepRecorder{}
			d := mailer.NewDispatcher(&fakeSender{}, mailer.WithSleep(rec.sleep))

			_, err := d.SendBulk(context.Background(), messages(tt.n))
			require.NoError(t, err)
			require.Len(t, rec.calls, tt.wantPauses, "n=%d", tt.n)
			for _, c := range rec.calls {
				assert.Equal(t, time.Second, c)
			}
		}
	})

	t.Run("real pause is observed", func(t *testing.T) {
		t.Parallel()

		d := mailer.NewDispatcher(&fakeSender{}, mailer.WithBatchSize(2), mailer.WithBatchDelay(20*time.Millisecond))
		start := time.Now()
		_, err := d.SendBulk(context.Background(), messages(5))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("concurrency is bounded by batch size", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		d := mailer.NewDispatcher(sender, mailer.WithBatchDelay(0))
		_, err := d.SendBulk(context.Background(), messages(30))
		require.NoError(t, err)

		assert.Equal(t, int32(30), sender.calls.Load())
		assert.LessOrEqual(t, sender.peak.Load(), int32(mailer.DefaultBatchSize))
	})

	t.Run("failures are isolated", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{fail: map[string]bool{"user3@x.io": true, "user17@x.io": true}}
		d := mailer.NewDispatcher(sender, mailer.WithBatchDelay(0))

		results, err := d.SendBulk(context.Background(), messages(20))
		require.NoError(t, err)

		for i, r := range results {
			if i == 3 || i == 17 {
				assert.False(t, r.Success)
				assert.Equal(t, "recipient rejected", r.Error)
				assert.Empty(t, r.MessageID)
				continue
			}
			assert.True(t, r.Success, "index %d", i)
		}
		assert.Equal(t, mailer.Summary{Total: 20, Successful: 18, Failed: 2}, mailer.Summarize(results))
	})

	t.Run("panicking transport fails only its message", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{panics: map[string]bool{"user3@x.io": true}}
		d := mailer.NewDispatcher(sender, mailer.WithBatchDelay(0))

		var results []mailer.SendResult
		require.NotPanics(t, func() {
			var err error
			results, err = d.SendBulk(context.Background(), messages(5))
			require.NoError(t, err)
		})

		require.Len(t, results, 5)
		for i, r := range results {
			if i == 3 {
				assert.False(t, r.Success)
				assert.Equal(t, "user3@x.io", r.Recipient)
				assert.Equal(t, "panic: transport exploded", r.Error)
				assert.Empty(t, r.MessageID)
				assert.False(t, r.Timestamp.IsZero())
				continue
			}
			assert.True(t, r.Success, "index %d", i)
		}
		assert.Equal(t, mailer.Summary{Total: 5, Successful: 4, Failed: 1}, mailer.Summarize(results))
	})

	t.Run("runs to completion after cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sender := &fakeSender{}
		d := mailer.NewDispatcher(sender, mailer.WithBatchDelay(0))
		results, err := d.SendBulk(ctx, messages(12))
		require.NoError(t, err)
		assert.Len(t, results, 12)
		assert.Equal(t, int32(12), sender.calls.Load())
	})

	t.Run("guards input size", func(t *testing.T) {
		t.Parallel()

		d := mailer.NewDispatcher(&fakeSender{})

		_, err := d.SendBulk(context.Background(), nil)
		require.ErrorIs(t, err, mailer.ErrNoMessages)

		_, err = d.SendBulk(context.Background(), messages(mailer.MaxBulkMessages+1))
		require.ErrorIs(t, err, mailer.ErrTooManyMessages)
	})
}

func TestBulkSender_ReportsBulkMode(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return("id", nil)

	obs := &recordingObserver{}
	m := mailer.New(sender, newStore(t), mailer.WithObserver(obs))
	d := mailer.NewDispatcher(mailer.BulkSender(m), mailer.WithBatchDelay(0))

	_, err := d.SendBulk(context.Background(), messages(3))
	require.NoError(t, err)
	assert.Equal(t, []string{mailer.ModeBulk, mailer.ModeBulk, mailer.ModeBulk}, obs.modes)
}
