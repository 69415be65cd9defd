package archiver

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/bcup/bcup/internal/debug"
)

// Item is a single regular file found by Walk.
type Item struct {
	// Path is the absolute path of the file.
	Path string
	// Name is the slash separated path relative to the walk root. For a root
	// that is a file, Name is its base name.
	Name string
	Info os.FileInfo
}

// Walk returns a lazy sequence of all regular files below root. Directories
// are traversed depth-first with an explicit stack; entries within a
// directory are visited in lexical order, and files of a directory come
// before the contents of its subdirectories.
//
// The first error ends the sequence. Every range over the sequence starts a
// fresh traversal.
func Walk(root string) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		abs, err := filepath.Abs(root)
		if err != nil {
			yield(Item{}, newPathError("walk", root, err, ErrWalk))
			return
		}

		fi, err := os.Stat(abs)
		if err != nil {
			yield(Item{}, newPathError("walk", abs, err, ErrWalk))
			return
		}

		switch {
		case fi.Mode().IsRegular():
			yield(Item{Path: abs, Name: filepath.Base(abs), Info: fi}, nil)
			return
		case !fi.IsDir():
			yield(Item{}, &PathError{Op: "walk", Path: abs, Kind: ErrInvalidInput})
			return
		}

		stack := []string{abs}
		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := os.ReadDir(dir)
			if err != nil {
				yield(Item{}, &PathError{Op: "readdir", Path: dir, Kind: ErrWalk, Err: err})
				return
			}

			var subdirs []string
			for _, entry := range entries {
				p := filepath.Join(dir, entry.Name())

				switch {
				case entry.IsDir():
					subdirs = append(subdirs, p)
					continue
				case !entry.Type().IsRegular():
					debug.Log("skipping %v, type %v", p, entry.Type())
					continue
				}

				info, err := entry.Info()
				if err != nil {
					yield(Item{}, &PathError{Op: "lstat", Path: p, Kind: ErrWalk, Err: err})
					return
				}

				rel, err := filepath.Rel(abs, p)
				if err != nil {
					yield(Item{}, &PathError{Op: "walk", Path: p, Kind: ErrWalk, Err: err})
					return
				}

				if !yield(Item{Path: p, Name: filepath.ToSlash(rel), Info: info}, nil) {
					return
				}
			}

			// push in reverse so the lexically first subdirectory is popped first
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}
}
