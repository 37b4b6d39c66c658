package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	errorTitles []string
	infoTitles  []string
}

func (r *recordingSink) Error(title string, _ error, _ []byte, _ string) error {
	r.errorTitles = append(r.errorTitles, title)
	return nil
}

func (r *recordingSink) Info(title, _ string) error {
	r.infoTitles = append(r.infoTitles, title)
	return nil
}

func newTestHistory(interval time.Duration) (*History, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	h := NewHistory(interval)
	h.now = func() time.Time { return now }
	return h, &now
}

func TestHistorySuppressesWithinInterval(t *testing.T) {
	h, now := newTestHistory(60 * time.Minute)

	assert.True(t, h.ShouldSend("値下げエラー"))
	assert.False(t, h.ShouldSend("値下げエラー"))

	*now = now.Add(30 * time.Minute)
	assert.False(t, h.ShouldSend("値下げエラー"))

	*now = now.Add(31 * time.Minute)
	assert.True(t, h.ShouldSend("値下げエラー"))
}

func TestHistoryTitlesAreIndependent(t *testing.T) {
	h, _ := newTestHistory(time.Hour)

	assert.True(t, h.ShouldSend("値下げエラー"))
	assert.True(t, h.ShouldSend("ログインエラー"))
	assert.False(t, h.ShouldSend("値下げエラー"))
}

func TestHistoryZeroIntervalNeverSuppresses(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 3; i++ {
		assert.True(t, h.ShouldSend("title"))
	}
}

func TestLimitedSuppressesRepeatedErrors(t *testing.T) {
	sink := &recordingSink{}
	h, _ := newTestHistory(time.Hour)
	limited := &Limited{Inner: sink, History: h}

	require.NoError(t, limited.Error("値下げエラー", errors.New("boom"), nil, ""))
	require.NoError(t, limited.Error("値下げエラー", errors.New("boom again"), nil, ""))

	assert.Equal(t, []string{"値下げエラー"}, sink.errorTitles)
}

func TestLimitedInfoAlwaysPasses(t *testing.T) {
	sink := &recordingSink{}
	h, _ := newTestHistory(time.Hour)
	limited := &Limited{Inner: sink, History: h}

	require.NoError(t, limited.Info("summary", "a"))
	require.NoError(t, limited.Info("summary", "b"))

	assert.Len(t, sink.infoTitles, 2)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, b}

	require.NoError(t, m.Error("title", errors.New("boom"), nil, ""))

	assert.Len(t, a.errorTitles, 1)
	assert.Len(t, b.errorTitles, 1)
}

func TestNoopIsSafe(t *testing.T) {
	var n Noop
	assert.NoError(t, n.Error("title", errors.New("boom"), []byte("png"), "<html>"))
	assert.NoError(t, n.Info("title", "body"))
}
