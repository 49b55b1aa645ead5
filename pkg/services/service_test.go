package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeService struct {
	name    string
	initErr error
	j       *journal
}

func (f *fakeService) Init() error {
	f.j.add("init " + f.name)
	return f.initErr
}

func (f *fakeService) Run(ctx context.Context) {}

func (f *fakeService) Stop() {
	f.j.add("stop " + f.name)
}

func TestManager_StopsInReverseOrder(t *testing.T) {
	j := &journal{}
	m := NewManager(nopLogger{})
	m.AddService(&fakeService{name: "a", j: j}, &fakeService{name: "b", j: j})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, m.Run(ctx))
	assert.Equal(t, []string{"init a", "init b", "stop b", "stop a"}, j.list())
}

func TestManager_InitFailureStopsStarted(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	m := NewManager(nopLogger{})
	m.AddService(
		&fakeService{name: "a", j: j},
		&fakeService{name: "b", j: j, initErr: boom},
		&fakeService{name: "c", j: j},
	)

	err := m.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init a", "init b", "stop a"}, j.list())
}
