package harness

import "fmt"

// Forwarder establishes the local-to-device port forward a remote session
// needs before it can be dialed.
type Forwarder interface {
	Forward() error
}

// Session is an open automation session on a remote browser.
type Session interface {
	Navigate(url string) error
	Close() error
}

// SessionDialer opens automation sessions.
type SessionDialer interface {
	Dial() (Session, error)
}

// RemoteRunner drives a browser on a remote device. Start forwards the
// port, opens a session, navigates to the benchmark URL and closes the
// session immediately: navigation is fire-and-forget, the page keeps
// running and triggers the postback on its own. Stop and Wait are no-ops
// for the same reason.
type RemoteRunner struct {
	forwarder Forwarder
	dialer    SessionDialer
	url       string
}

func NewRemoteRunner(forwarder Forwarder, dialer SessionDialer, url string) *RemoteRunner {
	return &RemoteRunner{forwarder: forwarder, dialer: dialer, url: url}
}

func (r *RemoteRunner) Start() error {
	if err := r.forwarder.Forward(); err != nil {
		return fmt.Errorf("forward port: %w", err)
	}
	sess, err := r.dialer.Dial()
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	if err := sess.Navigate(r.url); err != nil {
		_ = sess.Close()
		return fmt.Errorf("navigate to %s: %w", r.url, err)
	}
	return sess.Close()
}

func (r *RemoteRunner) Stop() error { return nil }

func (r *RemoteRunner) Wait() error { return nil }
