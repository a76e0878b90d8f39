// Package harness is the application entry screen: on creation it points the
// native profiling library at a file in the private files directory, shows
// what the library reports and stops profiling again.
package harness

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// ProfileFileName is the file created inside the files directory.
const ProfileFileName = "profile.pgo"

// Library is the boundary to the native profiling library.
type Library interface {
	StartProfiling(profileFile string) string
	StopProfiling()
}

// Display is the text view the start result is rendered into.
type Display interface {
	SetText(text string)
}

// ProfilePath joins filesDir with ProfileFileName and makes the result absolute.
func ProfilePath(filesDir string) string {
	return profilePath(filesDir, ProfileFileName)
}

func profilePath(filesDir, name string) string {
	p := filepath.Join(filesDir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

type Harness struct {
	FilesDir string
	// FileName overrides ProfileFileName when set.
	FileName string
	Lib      Library
	View     Display
}

func (h *Harness) ProfilePath() string {
	if h.FileName == "" {
		return ProfilePath(h.FilesDir)
	}
	return profilePath(h.FilesDir, h.FileName)
}

// OnCreate runs the creation sequence once: start, display, stop.
// It returns the displayed text.
func (h *Harness) OnCreate() string {
	path := h.ProfilePath()
	text := h.Lib.StartProfiling(path)
	if h.View != nil {
		h.View.SetText(text)
	}
	h.Lib.StopProfiling()
	return text
}

// TextView is a Display that keeps the current text and echoes every update to W.
type TextView struct {
	W io.Writer

	mu   sync.Mutex
	text string
}

func (v *TextView) SetText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text = text
	if v.W != nil {
		fmt.Fprintln(v.W, text)
	}
}

func (v *TextView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}
