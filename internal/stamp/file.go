package stamp

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileStamperKind identifies which stamping strategy a FileStamper uses.
// Stamps only compare equal when their Kind and Stamp match, so a stamp
// always remembers which stamper produced it.
type FileStamperKind string

const (
	KindExists            FileStamperKind = "Exists"
	KindModified          FileStamperKind = "Modified"
	KindModifiedRecursive FileStamperKind = "ModifiedRecursive"
	KindHash              FileStamperKind = "Hash"
	KindHashRecursive     FileStamperKind = "HashRecursive"
)

// FileStamper produces a FileStamp for a path. The zero value is the
// Modified stamper, matching the Task contract's default.
type FileStamper struct {
	kind FileStamperKind
}

// FileStamp is a comparable fingerprint captured for a path at the moment
// a dependency edge was recorded.
type FileStamp struct {
	Kind FileStamperKind

	// Present is used by Exists.
	Present bool

	// ModTime is used by Modified and ModifiedRecursive. The zero time
	// means "path absent".
	ModTime time.Time

	// Hash is used by Hash and HashRecursive: hex-encoded SHA-256.
	Hash string
}

func Exists() FileStamper            { return FileStamper{kind: KindExists} }
func Modified() FileStamper          { return FileStamper{kind: KindModified} }
func ModifiedRecursive() FileStamper { return FileStamper{kind: KindModifiedRecursive} }
func Hash() FileStamper              { return FileStamper{kind: KindHash} }
func HashRecursive() FileStamper     { return FileStamper{kind: KindHashRecursive} }

// Kind reports which stamping strategy this stamper uses.
func (s FileStamper) Kind() FileStamperKind {
	if s.kind == "" {
		return KindModified
	}
	return s.kind
}

// FileStamperByKind reconstructs the FileStamper identified by kind, the
// inverse of FileStamper.Kind. Used by internal/persist to round-trip a
// stamper choice through a serialized graph.
func FileStamperByKind(kind FileStamperKind) (FileStamper, error) {
	switch kind {
	case KindExists:
		return Exists(), nil
	case KindModified, "":
		return Modified(), nil
	case KindModifiedRecursive:
		return ModifiedRecursive(), nil
	case KindHash:
		return Hash(), nil
	case KindHashRecursive:
		return HashRecursive(), nil
	default:
		return FileStamper{}, &UnknownStamperError{Kind: kind}
	}
}

// Stamp fingerprints path according to the stamper's strategy. A missing
// path is not an error: it yields a stamp representing absence, so that a
// task requiring a file that does not yet exist can still be recorded
// consistently (and will become inconsistent once the file appears).
func (s FileStamper) Stamp(path string) (FileStamp, error) {
	switch s.Kind() {
	case KindExists:
		_, err := os.Lstat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return FileStamp{Kind: KindExists, Present: false}, nil
			}
			return FileStamp{}, err
		}
		return FileStamp{Kind: KindExists, Present: true}, nil

	case KindModified:
		info, err := os.Lstat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return FileStamp{Kind: KindModified}, nil
			}
			return FileStamp{}, err
		}
		return FileStamp{Kind: KindModified, ModTime: info.ModTime()}, nil

	case KindModifiedRecursive:
		max, err := maxModTime(path)
		if err != nil {
			return FileStamp{}, err
		}
		return FileStamp{Kind: KindModifiedRecursive, ModTime: max}, nil

	case KindHash:
		h, err := hashPath(path)
		if err != nil {
			return FileStamp{}, err
		}
		return FileStamp{Kind: KindHash, Hash: h}, nil

	case KindHashRecursive:
		h, err := hashRecursive(path)
		if err != nil {
			return FileStamp{}, err
		}
		return FileStamp{Kind: KindHashRecursive, Hash: h}, nil

	default:
		return FileStamp{}, &UnknownStamperError{Kind: s.Kind()}
	}
}

// UnknownStamperError reports a FileStamper value nobody implemented.
type UnknownStamperError struct{ Kind FileStamperKind }

func (e *UnknownStamperError) Error() string {
	return "stamp: unknown file stamper kind " + string(e.Kind)
}

// writeField length-prefixes data before feeding it to a running hash,
// avoiding ambiguity between adjacent fields.
func writeField(h interface{ Write([]byte) (int, error) }, data []byte) {
	n := uint64(len(data))
	prefix := []byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	}
	h.Write(prefix)
	h.Write(data)
}

func hashPath(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	h := sha256.New()
	if info.IsDir() {
		names, err := sortedDirNames(path)
		if err != nil {
			return "", err
		}
		for _, name := range names {
			writeField(h, []byte(name))
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	writeField(h, content)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashRecursive(root string) (string, error) {
	paths, err := sortedTreeFiles(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	h := sha256.New()
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		writeField(h, []byte(filepath.ToSlash(p)))
		writeField(h, content)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func maxModTime(root string) (time.Time, error) {
	paths, err := sortedTreeFiles(root)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}

	var max time.Time
	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			return time.Time{}, err
		}
		if info.ModTime().After(max) {
			max = info.ModTime()
		}
	}
	return max, nil
}

// sortedDirNames returns the immediate child names of dir, sorted: never
// trust OS directory order.
func sortedDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// sortedTreeFiles walks root and returns every regular file beneath it, in
// sorted slash-normalized path order.
func sortedTreeFiles(root string) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// OpenIfFile opens path for reading, returning (nil, nil) if the path does
// not exist or is a directory (Windows compatibility requires treating
// directories the same as missing paths, since they cannot be opened for
// read the way a require-file caller expects).
func OpenIfFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}
	return os.Open(path)
}
