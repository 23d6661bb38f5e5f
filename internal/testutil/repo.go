package testutil

import (
	syncpkg "dotsync/internal/sync"
)

// MockMirror is a fake repository controller that records the order of
// calls and returns configurable results.
type MockMirror struct {
	// Calls records every method invocation in order, e.g. "StageAll",
	// "Push(main)".
	Calls []string

	// CommitHash and Committed are returned from CommitIfChanged.
	CommitHash string
	Committed  bool

	// Errs maps a method name (without arguments) to an error to return.
	Errs map[string]error

	// SummaryResult is returned from Summary. When nil, Summary returns
	// a summary with Exists=false.
	SummaryResult *syncpkg.RepoSummary
}

// NewMockMirror creates a MockMirror that commits successfully with a
// fixed hash.
func NewMockMirror() *MockMirror {
	return &MockMirror{
		CommitHash: "0123456789abcdef0123456789abcdef01234567",
		Committed:  true,
		Errs:       make(map[string]error),
	}
}

func (m *MockMirror) record(call string) { m.Calls = append(m.Calls, call) }

// CallNames returns the recorded calls stripped of their arguments.
func (m *MockMirror) CallNames() []string {
	names := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		name := c
		for i := 0; i < len(c); i++ {
			if c[i] == '(' {
				name = c[:i]
				break
			}
		}
		names = append(names, name)
	}
	return names
}

func (m *MockMirror) EnsureInitialized() error {
	m.record("EnsureInitialized")
	return m.Errs["EnsureInitialized"]
}

func (m *MockMirror) IdentityConfigured() error {
	m.record("IdentityConfigured")
	return m.Errs["IdentityConfigured"]
}

func (m *MockMirror) StageAll() error {
	m.record("StageAll")
	return m.Errs["StageAll"]
}

func (m *MockMirror) CommitIfChanged(message string) (string, bool, error) {
	m.record("CommitIfChanged(" + message + ")")
	if err := m.Errs["CommitIfChanged"]; err != nil {
		return "", false, err
	}
	if !m.Committed {
		return "", false, nil
	}
	return m.CommitHash, true, nil
}

func (m *MockMirror) EnsureBranch(name string) error {
	m.record("EnsureBranch(" + name + ")")
	return m.Errs["EnsureBranch"]
}

func (m *MockMirror) ConfigureRemote(url string) error {
	m.record("ConfigureRemote(" + url + ")")
	return m.Errs["ConfigureRemote"]
}

func (m *MockMirror) Push(branch string) error {
	m.record("Push(" + branch + ")")
	return m.Errs["Push"]
}

func (m *MockMirror) CloneOrFetch(url, branch string) error {
	m.record("CloneOrFetch(" + url + "," + branch + ")")
	return m.Errs["CloneOrFetch"]
}

func (m *MockMirror) Summary() (*syncpkg.RepoSummary, error) {
	m.record("Summary")
	if err := m.Errs["Summary"]; err != nil {
		return nil, err
	}
	if m.SummaryResult != nil {
		return m.SummaryResult, nil
	}
	return &syncpkg.RepoSummary{}, nil
}

// Compile-time check
var _ syncpkg.MirrorRepo = (*MockMirror)(nil)
