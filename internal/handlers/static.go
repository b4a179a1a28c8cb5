package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	gorillahandlers "github.com/gorilla/handlers"
)

// ErrStaticDirMissing is returned when the static asset directory does not exist.
var ErrStaticDirMissing = errors.New("static directory missing")

// NewStaticHandler serves files under dir with the URL prefix stripped. Directories are not listed.
// With noCache set, responses carry Cache-Control: no-cache so edited assets are picked up immediately.
func NewStaticHandler(dir, prefix string, noCache bool) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStaticDirMissing, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStaticDirMissing, dir)
	}

	fileServer := http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(dir)}))
	h := gorillahandlers.CompressHandler(fileServer)
	if !noCache {
		return h, nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		h.ServeHTTP(w, r)
	}), nil
}

// filesOnly hides directories so http.FileServer answers 404 instead of a listing.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
