package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/gitclient"
	"gopkg.in/yaml.v3"
)

var (
	ErrReadOnly  = errors.New("store is read-only")
	ErrNoSuchRef = errors.New("no such ref")
)

// Source is the abstraction over different types of storage layers,
// in particular local disk (non-versioned) and a Git repo (read-only).
type Source interface {
	// Refresh updates the internal state of the source (e.g., via git fetch).
	// For a disk store, this is a no-op.
	Refresh() error
	// Store returns a handle to a store at the given ref.
	// For non-versioned disk-based stores, ref must be "".
	Store(ref string) (Store, error)
}

// Store is a minimal abstraction to list, read, and write files.
// It is the common interface for disk-based and git-repo-based stores.
type Store interface {
	// ListFiles lists all files in dir (recursively).
	// The resulting paths are relative to the store's root directory,
	// so they can be passed to ReadFile and WriteFile unmodified.
	ListFiles(dir string) ([]string, error)
	// ReadFile reads the contents of path from the store.
	// path should be a relative path (e.g., "records/glossary.yaml").
	ReadFile(path string) ([]byte, error)
	// WriteFile writes the given contents to path in the store.
	// Stores that do not support writing return ErrReadOnly.
	WriteFile(path string, contents []byte) error
}

// DiskStore is an implementation of Source and Store that reads files from the local file system.
type DiskStore struct {
	rootDir string
}

var _ Source = (*DiskStore)(nil)
var _ Store = (*DiskStore)(nil)

func NewDiskStore(rootDir string) *DiskStore {
	return &DiskStore{rootDir: rootDir}
}

func (d *DiskStore) Refresh() error {
	return nil
}

func (d *DiskStore) Store(ref string) (Store, error) {
	if ref != "" {
		return nil, fmt.Errorf("invalid ref %q: %w", ref, ErrNoSuchRef)
	}
	return d, nil
}

func (d *DiskStore) ListFiles(dir string) ([]string, error) {
	return listFilesRecursively(d.rootDir, dir)
}

func resolveRelPath(root, subpath string) (string, error) {
	fullPath := filepath.Join(root, subpath)
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		return "", fmt.Errorf("not a relative path: %v", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes root directory", subpath)
	}
	return fullPath, nil
}

func (d *DiskStore) ReadFile(path string) ([]byte, error) {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

func (d *DiskStore) WriteFile(path string, contents []byte) error {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, contents, 0644)
}

// GitSource is an implementation of Source that reads from a remote Git repository.
type GitSource struct {
	client     *gitclient.Client
	defaultRef string   // ref to use if the empty ref ("") is requested
	rootDir    string   // directory within the repository that stores are rooted at
	refs       []string // cached list of available references
}

// gitStore is a read-only view of a single revision in a GitSource.
type gitStore struct {
	client  *gitclient.Client
	ref     string
	rootDir string
}

var _ Source = (*GitSource)(nil)
var _ Store = (*gitStore)(nil)

// NewGitSource returns a source over client whose stores are rooted at
// rootDir ("" for the repository root). If defaultRef is empty, the
// repository's default branch is used.
func NewGitSource(client *gitclient.Client, defaultRef, rootDir string) (*GitSource, error) {
	if defaultRef == "" {
		b, err := client.DefaultBranch()
		if err != nil {
			return nil, err
		}
		defaultRef = b
	}
	return &GitSource{
		client:     client,
		defaultRef: defaultRef,
		rootDir:    path.Clean("/" + rootDir)[1:],
	}, nil
}

func (g *GitSource) DefaultRef() string {
	return g.defaultRef
}

func (g *GitSource) Refresh() error {
	g.refs = nil
	return g.client.Update()
}

func (g *GitSource) Store(ref string) (Store, error) {
	if ref == "" {
		ref = g.defaultRef
	}
	refs, err := g.ListReferences()
	if err != nil {
		return nil, fmt.Errorf("cannot list references: %v", err)
	}
	if !slices.Contains(refs, ref) {
		return nil, fmt.Errorf("%q: %w", ref, ErrNoSuchRef)
	}
	return &gitStore{client: g.client, ref: ref, rootDir: g.rootDir}, nil
}

func (g *GitSource) ListReferences() ([]string, error) {
	if g.refs != nil {
		return g.refs, nil
	}
	refs, err := g.client.ListReferences()
	if err != nil {
		return nil, err
	}
	slices.Sort(refs)
	g.refs = refs
	return refs, nil
}

// repoPath maps a store-relative path to a repository path.
// Git paths use "/" on any OS.
func (g *gitStore) repoPath(p string) string {
	return path.Join(g.rootDir, p)
}

func (g *gitStore) ListFiles(dir string) ([]string, error) {
	files, err := g.client.ListFilesRecursive(g.ref, g.repoPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %v", err)
	}
	result := make([]string, len(files))
	for i, f := range files {
		result[i] = path.Join(dir, f)
	}
	return result, nil
}

func (g *gitStore) ReadFile(p string) ([]byte, error) {
	return g.client.ReadFile(g.ref, g.repoPath(p))
}

func (g *gitStore) WriteFile(path string, contents []byte) error {
	return ErrReadOnly
}

// ReadRecords decodes all records of the multi-document YAML file at path.
// Unknown fields are rejected.
func ReadRecords(st Store, path string) ([]api.Record, error) {
	bs, err := st.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)

	var records []api.Record
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML node in %q: %w", path, err)
		}
		// Blank documents (just "---").
		if len(node.Content) == 0 {
			continue
		}
		r, err := api.NewRecordFromNode(&node, true)
		if err != nil {
			return nil, fmt.Errorf("error in document %q starting at line %d: %v", path, node.Line, err)
		}
		r.GetSourceInfo().Path = path
		records = append(records, r)
	}
	return records, nil
}

// InsertOrReplaceRecord rewrites the file at path so that it contains
// record. A record with the same kind and GUID is replaced in place;
// otherwise record is appended. A missing file is created.
func InsertOrReplaceRecord(st Store, path string, record api.Record) error {
	records, err := ReadRecords(st, path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read record file %s: %v", path, err)
	}
	i := slices.IndexFunc(records, func(r api.Record) bool { return sameRecord(r, record) })
	if i >= 0 {
		records[i] = record
	} else {
		records = append(records, record)
	}
	if err := writeRecords(st, path, records); err != nil {
		return fmt.Errorf("failed to write record file %s: %v", path, err)
	}
	return nil
}

// DeleteRecord removes record from the file at path.
func DeleteRecord(st Store, path string, record api.Record) error {
	records, err := ReadRecords(st, path)
	if err != nil {
		return fmt.Errorf("failed to read record file %s: %v", path, err)
	}
	match := func(r api.Record) bool { return sameRecord(r, record) }
	if !slices.ContainsFunc(records, match) {
		return fmt.Errorf("record %s not found in file %s", record.GetGUID(), path)
	}
	if err := writeRecords(st, path, slices.DeleteFunc(records, match)); err != nil {
		return fmt.Errorf("failed to write record file %s: %v", path, err)
	}
	return nil
}

func sameRecord(a, b api.Record) bool {
	return a.GetKind() == b.GetKind() && a.GetGUID() == b.GetGUID()
}

func writeRecords(st Store, path string, records []api.Record) error {
	var buf bytes.Buffer
	for i, r := range records {
		bs, err := api.MarshalRecord(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.GetGUID(), err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(bs)
	}
	return st.WriteFile(path, buf.Bytes())
}

// listFilesRecursively lists all files in subDir, which must
// be a relative path specifying a sub-directory of rootDir.
// The resulting paths are relative to rootDir.
//
// Example:
// with rootDir "/foo/bar" and subDir "baz/quz", all files under
// "/foo/bar/baz/quz" are returned relative to "/foo/bar", such as
// ["baz/quz/terms.yaml"].
func listFilesRecursively(rootDir, subDir string) ([]string, error) {
	var files []string
	startDir := filepath.Join(rootDir, subDir)
	err := filepath.WalkDir(startDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// RecordFiles lists all *.yml and *.yaml files under dir, which must be
// a path relative to the store's root. The result is sorted.
func RecordFiles(st Store, dir string) ([]string, error) {
	allFiles, err := st.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, f := range allFiles {
		lf := strings.ToLower(f)
		if strings.HasSuffix(lf, ".yml") || strings.HasSuffix(lf, ".yaml") {
			result = append(result, f)
		}
	}
	slices.Sort(result)
	return result, nil
}
