package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"pgoexample/internal/app"
	"pgoexample/internal/nativelib"
)

const configEnv = "PGOEXAMPLE_CONFIG"

// loader opens the library once per process. An open failure is kept and
// reported on every later call.
type loader struct {
	once sync.Once
	open func() (*nativelib.Library, error)
	lib  *nativelib.Library
	err  error
}

var defaultLoader = &loader{open: openFromEnv}

func openFromEnv() (*nativelib.Library, error) {
	svc, err := app.New(app.Options{ConfigPath: os.Getenv(configEnv)})
	if err != nil {
		return nil, err
	}
	return svc.Library(context.Background()), nil
}

func (l *loader) get() (*nativelib.Library, error) {
	l.once.Do(func() {
		l.lib, l.err = l.open()
	})
	return l.lib, l.err
}

func (l *loader) start(profileFile string) string {
	lib, err := l.get()
	if err != nil {
		return fmt.Sprintf("%s: %v", nativelib.TagFailed, err)
	}
	return lib.StartProfiling(profileFile)
}

func (l *loader) stop() {
	if lib, err := l.get(); err == nil {
		lib.StopProfiling()
	}
}
