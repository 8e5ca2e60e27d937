// Package filelog stores the order log as a single JSON array on disk.
package filelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
)

// Log rewrites the whole file on every append. Writers are serialized by mu
// and each write lands through a rename, so readers never see a torn file.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open makes sure the parent directory exists. The file itself is created on
// the first append.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("filelog: create dir for %q: %w", path, err)
	}
	return &Log{path: path}, nil
}

func (l *Log) Append(_ context.Context, o *orders.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.read()
	if err != nil {
		return err
	}
	list = append(list, *o)
	return l.write(list)
}

func (l *Log) List(_ context.Context) ([]orders.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *Log) FindBySession(_ context.Context, sessionID string) (*orders.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.read()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].SessionID == sessionID {
			return &list[i], nil
		}
	}
	return nil, orders.ErrNotFound
}

func (l *Log) ClaimConfirmation(_ context.Context, id string, at time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, i, err := l.lookup(id)
	if err != nil {
		return false, err
	}
	if list[i].ConfirmationSentAt != nil {
		return false, nil
	}
	list[i].ConfirmationSentAt = &at
	return true, l.write(list)
}

func (l *Log) ReleaseConfirmation(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, i, err := l.lookup(id)
	if err != nil {
		return err
	}
	if list[i].ConfirmationSentAt == nil {
		return nil
	}
	list[i].ConfirmationSentAt = nil
	return l.write(list)
}

// lookup must be called with mu held.
func (l *Log) lookup(id string) ([]orders.Order, int, error) {
	list, err := l.read()
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		if list[i].ID == id {
			return list, i, nil
		}
	}
	return nil, 0, orders.ErrNotFound
}

// read returns an empty list when the file does not exist yet.
func (l *Log) read() ([]orders.Order, error) {
	b, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []orders.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filelog: read %q: %w", l.path, err)
	}
	if len(b) == 0 {
		return []orders.Order{}, nil
	}
	var list []orders.Order
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("filelog: decode %q: %w", l.path, err)
	}
	return list, nil
}

func (l *Log) write(list []orders.Order) error {
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("filelog: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".orders-*.json")
	if err != nil {
		return fmt.Errorf("filelog: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filelog: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filelog: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("filelog: rename: %w", err)
	}
	return nil
}
