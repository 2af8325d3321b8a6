package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) Reload(context.Context) error {
	c.calls++
	return c.err
}

func TestRunNow_ReloadsEverySource(t *testing.T) {
	s := NewScheduler("@every 1h", slog.New(slog.NewTextHandler(io.Discard, nil)))
	broken := &countingSource{err: errors.New("open RangeDetay.xlsx: no such file")}
	ok := &countingSource{}
	s.Add("detail", broken)
	s.Add("catalog", ok)

	s.RunNow()

	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := NewScheduler("not a spec", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler("*/5 * * * *", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}
