package lookup

import (
	"context"
	"errors"
	"sync"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
)

// DialogState is the lifecycle of a lookup dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogLoading
	DialogLoaded
	DialogFailed
)

func (s DialogState) String() string {
	switch s {
	case DialogClosed:
		return "closed"
	case DialogLoading:
		return "loading"
	case DialogLoaded:
		return "loaded"
	case DialogFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Looker is what a dialog looks words up with.
type Looker interface {
	Lookup(ctx context.Context, keyword string) ([]dictionary.DictionaryEntry, error)
}

// View is a snapshot of a dialog.
type View struct {
	Word    string
	State   DialogState
	Entries []dictionary.DictionaryEntry
	Err     error
}

// Dialog shows the entries of the most recently selected word. A result
// that arrives after the selection changed or the dialog closed is dropped.
type Dialog struct {
	looker Looker

	mu         sync.Mutex
	generation uint64
	view       View
}

// NewDialog creates a closed dialog.
func NewDialog(looker Looker) *Dialog {
	return &Dialog{looker: looker}
}

// Open selects word and looks it up. It reports false when the result was
// dropped because another Open or a Close happened first.
func (d *Dialog) Open(ctx context.Context, word string) bool {
	d.mu.Lock()
	d.generation++
	generation := d.generation
	d.view = View{Word: word, State: DialogLoading}
	d.mu.Unlock()

	entries, err := d.looker.Lookup(ctx, word)

	d.mu.Lock()
	defer d.mu.Unlock()
	if generation != d.generation {
		return false
	}
	switch {
	case errors.Is(err, ErrEmptyKeyword):
		d.view.State = DialogLoaded
		d.view.Entries = []dictionary.DictionaryEntry{}
	case err != nil:
		d.view.State = DialogFailed
		d.view.Err = err
	default:
		d.view.State = DialogLoaded
		d.view.Entries = entries
	}
	return true
}

// Close hides the dialog and discards its entries.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.view = View{}
}

// View returns the current state of the dialog.
func (d *Dialog) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}
