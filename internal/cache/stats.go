package cache

import (
	"os"
	"sort"
	"strings"
	"time"
)

// Entry describes one cached document.
type Entry struct {
	BookID  string
	Path    string
	Size    int64
	ModTime time.Time
}

// Entries lists the cached documents, sorted by book id. Leftover .tmp
// files from interrupted downloads are not entries.
func (m *Manager) Entries() ([]Entry, error) {
	des, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, de := range des {
		name := de.Name()
		if !de.Type().IsRegular() || !strings.HasSuffix(name, Ext) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			BookID:  name[:len(name)-len(Ext)],
			Path:    m.Path(name[:len(name)-len(Ext)]),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out, nil
}

// Usage returns the number of cached documents and their total size.
func (m *Manager) Usage() (count int, bytes int64, err error) {
	entries, err := m.Entries()
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		bytes += e.Size
	}
	return len(entries), bytes, nil
}

// Clear removes every cached document, the cover images and any stale
// temp files. It returns the number of documents removed.
func (m *Manager) Clear() (int, error) {
	des, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, de := range des {
		name := de.Name()
		if !de.Type().IsRegular() {
			continue
		}
		switch {
		case strings.HasSuffix(name, Ext):
			if err := os.Remove(m.Path(name[:len(name)-len(Ext)])); err != nil && !os.IsNotExist(err) {
				return removed, err
			}
			removed++
		case strings.HasSuffix(name, Ext+".tmp"):
			_ = os.Remove(m.Path(strings.TrimSuffix(name, Ext+".tmp")) + ".tmp")
		}
	}
	if err := m.clearCovers(); err != nil {
		return removed, err
	}
	return removed, nil
}
