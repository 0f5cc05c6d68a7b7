package assets

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFetcher serves "image:<path>" for every path except the failing ones.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, relPath string) (io.ReadCloser, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, relPath)
	f.mu.Unlock()
	if f.fail[relPath] {
		return nil, errors.New("boom")
	}
	return io.NopCloser(strings.NewReader("image:" + relPath)), nil
}

func TestStore_Sync(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := &fakeFetcher{}
	s := NewStore(fs, "/data/rsc", f, WithConcurrency(2))

	n, err := s.Sync(context.Background(), []string{"/poster.jpg", "", "/backdrop.jpg", "/poster.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"/poster.jpg", "/backdrop.jpg"}, f.calls)
	assert.LessOrEqual(t, f.maxSeen.Load(), int32(2))

	b, err := afero.ReadFile(fs, "/data/rsc/original/poster.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image:/poster.jpg", string(b))

	// Present files are not fetched again.
	n, err = s.Sync(context.Background(), []string{"/poster.jpg"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.calls, 2)
}

func TestStore_Sync_Failure(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := &fakeFetcher{fail: map[string]bool{"/bad.jpg": true}}
	s := NewStore(fs, "/rsc", f, WithConcurrency(1))

	_, err := s.Sync(context.Background(), []string{"/bad.jpg"})
	require.Error(t, err)

	ok, err := s.Has("/bad.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = afero.Exists(fs, "/rsc/original/bad.jpg.part")
	require.NoError(t, err)
	assert.False(t, ok, "no partial file is left behind")
}

func TestStore_PathStaysUnderRoot(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "/rsc", &fakeFetcher{})
	assert.Equal(t, "/rsc/original/etc/passwd", s.Path("/../../etc/passwd"))
	assert.Equal(t, "/rsc/original/a.jpg", s.Path("a.jpg"))
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/t/p/original/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "/t/p/original/poster.jpg", r.URL.Path)
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL + "/t/p/original/")
	body, err := f.Fetch(context.Background(), "/poster.jpg")
	require.NoError(t, err)
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "jpeg", string(b))

	_, err = f.Fetch(context.Background(), "/missing.jpg")
	assert.ErrorContains(t, err, "404")

	// Let idle keep-alive connections close before the leak check.
	f.Client.CloseIdleConnections()
}
