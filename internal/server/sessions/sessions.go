// Package sessions keeps one draft editor per admin screen, where a screen is
// a (staff user, collection) pair.
package sessions

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/editor"
	"github.com/dmitrijs2005/gophsite/internal/logging"
)

type screen struct {
	user       string
	collection string
}

// Manager creates editors lazily and hands the same one back for a screen.
type Manager struct {
	store    editor.Writer
	recorder activity.Recorder
	logger   logging.Logger

	mu      sync.Mutex
	editors map[screen]*editor.Editor
}

func NewManager(store editor.Writer, recorder activity.Recorder, logger logging.Logger) *Manager {
	return &Manager{
		store:    store,
		recorder: recorder,
		logger:   logger,
		editors:  make(map[screen]*editor.Editor),
	}
}

// Editor returns the editor of user's screen for collection.
func (m *Manager) Editor(user, collection string) (*editor.Editor, error) {
	kind, err := content.Lookup(collection)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := screen{user: user, collection: collection}
	if e, ok := m.editors[key]; ok {
		return e, nil
	}
	e := editor.New(kind.Schema, m.store, m.recorder, m.logger.With("user", user))
	m.editors[key] = e
	return e, nil
}

// Screens lists the collections user has an editor for.
func (m *Manager) Screens(user string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for key := range m.editors {
		if key.user == user {
			out = append(out, key.collection)
		}
	}
	sort.Strings(out)
	return out
}

// Close drops every editor of user that is not saving. It reports how many
// were dropped.
func (m *Manager) Close(user string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, e := range m.editors {
		if key.user != user || e.Saving() {
			continue
		}
		delete(m.editors, key)
		n++
	}
	return n
}
