package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner(t *testing.T) {
	t.Run("spawn failure surfaces from start", func(t *testing.T) {
		r := NewLocalRunner("/nonexistent/browser", "http://localhost:8000/test.html")
		err := r.Start()
		assert.Error(t, err)
	})

	t.Run("stop terminates a running process", func(t *testing.T) {
		r := NewLocalRunner("sleep", "60")
		require.NoError(t, r.Start())
		require.NoError(t, r.Stop())

		done := make(chan error, 1)
		go func() { done <- r.Wait() }()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("wait did not return after stop")
		}
	})

	t.Run("natural exit", func(t *testing.T) {
		r := NewLocalRunner("true")
		require.NoError(t, r.Start())
		assert.NoError(t, r.Wait())
		// Stop and Wait stay no-ops after exit.
		assert.NoError(t, r.Stop())
		assert.NoError(t, r.Wait())
	})

	t.Run("stop and wait before start are no-ops", func(t *testing.T) {
		r := NewLocalRunner("true")
		assert.NoError(t, r.Stop())
		assert.NoError(t, r.Wait())
	})
}

type fakeSession struct {
	navigated []string
	closed    int
	navErr    error
}

func (s *fakeSession) Navigate(url string) error {
	s.navigated = append(s.navigated, url)
	return s.navErr
}
func (s *fakeSession) Close() error { s.closed++; return nil }

type fakeDialer struct {
	session *fakeSession
	err     error
}

func (d *fakeDialer) Dial() (Session, error) { return d.session, d.err }

type fakeForwarder struct {
	err   error
	calls int
}

func (f *fakeForwarder) Forward() error { f.calls++; return f.err }

func TestRemoteRunner(t *testing.T) {
	t.Run("start navigates and closes the session", func(t *testing.T) {
		sess := &fakeSession{}
		fwd := &fakeForwarder{}
		r := NewRemoteRunner(fwd, &fakeDialer{session: sess}, "http://localhost:8000/test.html")

		require.NoError(t, r.Start())
		assert.Equal(t, 1, fwd.calls)
		assert.Equal(t, []string{"http://localhost:8000/test.html"}, sess.navigated)
		assert.Equal(t, 1, sess.closed)

		// The page keeps running without the session.
		assert.NoError(t, r.Stop())
		assert.NoError(t, r.Wait())
	})

	t.Run("forward failure is fatal", func(t *testing.T) {
		fwd := &fakeForwarder{err: assert.AnError}
		r := NewRemoteRunner(fwd, &fakeDialer{session: &fakeSession{}}, "url")
		assert.Error(t, r.Start())
	})

	t.Run("navigate failure still closes the session", func(t *testing.T) {
		sess := &fakeSession{navErr: assert.AnError}
		r := NewRemoteRunner(&fakeForwarder{}, &fakeDialer{session: sess}, "url")
		assert.Error(t, r.Start())
		assert.Equal(t, 1, sess.closed)
	})
}
