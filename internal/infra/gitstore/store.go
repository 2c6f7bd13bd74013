// Package gitstore stores cache entries as blobs referenced from Git refs.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/crypto"
)

// Store implements domain.EntryStore using Git plumbing.
//
// Data structure:
//
//	refs/<namespace>/
//	  initialized  → blob (marker)
//	  entries/
//	    <key>      → blob (entry YAML, optionally encrypted)
//	  snapshots/
//	    <name>     → tree (one blob per entry key)
type Store struct {
	repo      *git.Repository
	encryptor *crypto.Encryptor
	namespace string
	mu        sync.RWMutex
}

var (
	_ domain.EntryStore       = (*Store)(nil)
	_ domain.EntrySnapshotter = (*Store)(nil)
)

// New opens the repository at repoPath.
func New(repoPath, namespace string) (*Store, error) {
	return NewWithEncryption(repoPath, namespace, "", "")
}

// NewWithEncryption opens the repository at repoPath. An empty key disables
// encryption; otherwise it must be 64 hex characters.
func NewWithEncryption(repoPath, namespace, encryptionKey, cacheDir string) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	var encryptor *crypto.Encryptor
	if encryptionKey != "" {
		encryptor, err = crypto.NewEncryptor(encryptionKey, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create encryptor: %w", err)
		}
	}
	return NewWithRepoAndEncryptor(repo, namespace, encryptor), nil
}

// NewWithRepo creates a Store on an open repository.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	return NewWithRepoAndEncryptor(repo, namespace, nil)
}

// NewWithRepoAndEncryptor creates a Store on an open repository.
func NewWithRepoAndEncryptor(repo *git.Repository, namespace string, encryptor *crypto.Encryptor) *Store {
	return &Store{
		repo:      repo,
		namespace: namespace,
		encryptor: encryptor,
	}
}

func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

func (s *Store) entriesPrefix() string {
	return s.refPrefix() + "entries/"
}

func (s *Store) snapshotsPrefix() string {
	return s.refPrefix() + "snapshots/"
}

func (s *Store) entryRef(key string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.entriesPrefix() + key)
}

func (s *Store) snapshotRef(name string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.snapshotsPrefix() + name)
}

func (s *Store) initializedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "initialized")
}

// Initialize writes the initialized marker. It is idempotent.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	if err == nil {
		return nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check initialized ref: %w", err)
	}

	hash, err := s.writeRawBlob([]byte("initialized"))
	if err != nil {
		return err
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(s.initializedRef(), hash)); err != nil {
		return fmt.Errorf("set initialized ref: %w", err)
	}
	return nil
}

// IsInitialized reports whether Initialize ran.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	return err == nil
}

// Get retrieves an entry by key.
func (s *Store) Get(key string) (*domain.CacheEntry, error) {
	if err := domain.ValidateEntryKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.entryRef(key), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, key)
		}
		return nil, fmt.Errorf("get entry ref: %w", err)
	}
	return s.decodeEntry(key, ref.Hash())
}

// List returns summaries of every entry, sorted by key.
func (s *Store) List() ([]domain.EntrySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []domain.EntrySummary
	err := s.forEachEntryRef(func(key string, ref *plumbing.Reference) error {
		entry, err := s.decodeEntry(key, ref.Hash())
		if err != nil {
			return err
		}
		summaries = append(summaries, entry.Summarize())
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(summaries, func(a, b domain.EntrySummary) int {
		return strings.Compare(a.Key, b.Key)
	})
	return summaries, nil
}

// Save creates or replaces the entry under entry.Key.
func (s *Store) Save(entry *domain.CacheEntry) error {
	if err := domain.ValidateEntryKey(entry.Key); err != nil {
		return err
	}

	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(s.entryRef(entry.Key), hash)); err != nil {
		return fmt.Errorf("set entry ref: %w", err)
	}
	return nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Store) Delete(key string) error {
	if err := domain.ValidateEntryKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Storer.RemoveReference(s.entryRef(key)); err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("remove entry ref: %w", err)
	}
	return nil
}

// Snapshot records the current set of entries as a tree under name.
func (s *Store) Snapshot(name string) error {
	if err := domain.ValidateEntryKey(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []object.TreeEntry
	err := s.forEachEntryRef(func(key string, ref *plumbing.Reference) error {
		entries = append(entries, object.TreeEntry{
			Name: key,
			Mode: filemode.Regular,
			Hash: ref.Hash(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	// Tree entries must be sorted for a stable hash.
	slices.SortFunc(entries, func(a, b object.TreeEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	tree := &object.Tree{Entries: entries}
	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return fmt.Errorf("store tree: %w", err)
	}

	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(s.snapshotRef(name), hash)); err != nil {
		return fmt.Errorf("set snapshot ref: %w", err)
	}
	return nil
}

// RestoreSnapshot replaces every entry with the contents of snapshot name.
func (s *Store) RestoreSnapshot(name string) error {
	if err := domain.ValidateEntryKey(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.repo.Reference(s.snapshotRef(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: snapshot %s", domain.ErrEntryNotFound, name)
		}
		return fmt.Errorf("get snapshot ref: %w", err)
	}
	tree, err := s.repo.TreeObject(ref.Hash())
	if err != nil {
		return fmt.Errorf("get snapshot tree: %w", err)
	}

	var stale []plumbing.ReferenceName
	err = s.forEachEntryRef(func(_ string, ref *plumbing.Reference) error {
		stale = append(stale, ref.Name())
		return nil
	})
	if err != nil {
		return err
	}
	for _, refName := range stale {
		if err := s.repo.Storer.RemoveReference(refName); err != nil {
			return fmt.Errorf("remove ref %s: %w", refName, err)
		}
	}

	for _, entry := range tree.Entries {
		if err := s.repo.Storer.SetReference(plumbing.NewHashReference(s.entryRef(entry.Name), entry.Hash)); err != nil {
			return fmt.Errorf("restore entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

// ListSnapshots returns the snapshot names, sorted.
func (s *Store) ListSnapshots() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	prefix := s.snapshotsPrefix()
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if name, ok := strings.CutPrefix(string(ref.Name()), prefix); ok && name != "" {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) forEachEntryRef(fn func(key string, ref *plumbing.Reference) error) error {
	refs, err := s.repo.References()
	if err != nil {
		return fmt.Errorf("list refs: %w", err)
	}
	prefix := s.entriesPrefix()
	return refs.ForEach(func(ref *plumbing.Reference) error {
		key, ok := strings.CutPrefix(string(ref.Name()), prefix)
		if !ok || key == "" {
			return nil
		}
		return fn(key, ref)
	})
}

func (s *Store) decodeEntry(key string, hash plumbing.Hash) (*domain.CacheEntry, error) {
	data, err := s.readBlob(hash)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", key, err)
	}
	var entry domain.CacheEntry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrCorruptEntry, key, err)
	}
	entry.Key = key
	return &entry, nil
}

func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	if s.encryptor != nil {
		encrypted, err := s.encryptor.Encrypt(data)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("encrypt data: %w", err)
		}
		data = encrypted
	}
	return s.writeRawBlob(data)
}

func (s *Store) writeRawBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}

	if s.encryptor != nil {
		decrypted, err := s.encryptor.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt data: %w", err)
		}
		return decrypted, nil
	}
	return data, nil
}
