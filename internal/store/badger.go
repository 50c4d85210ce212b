package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/models"
)

var (
	credentialKey = []byte("auth/credential")
	postPrefix    = []byte("posts/")
	titlePrefix   = []byte("titles/")
)

// maxTxnRetries bounds retries of a unique insert that lost a write conflict.
const maxTxnRetries = 3

var _ Backend = (*BadgerStore)(nil)

// BadgerStore keeps both collections in an on-disk badger database.
// Each operation runs in its own transaction; records are JSON documents.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database under dir.
func NewBadgerStore(dir string, log *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{log.Sugar()}).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) GetCredential(_ context.Context) (*models.Credential, error) {
	var cred models.Credential
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(credentialKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if json.Unmarshal(val, &cred) != nil {
				cred = models.Credential{}
			}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get credential: %w", err)
	}
	if cred.HashedPassword == "" {
		return nil, ErrNotFound
	}
	return &cred, nil
}

func (s *BadgerStore) PutCredential(_ context.Context, hashedPassword string) error {
	val, err := json.Marshal(models.Credential{HashedPassword: hashedPassword})
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(credentialKey, val)
	}); err != nil {
		return fmt.Errorf("badger put credential: %w", err)
	}
	return nil
}

func (s *BadgerStore) InsertPost(_ context.Context, p *models.Post) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return setPost(txn, p)
	}); err != nil {
		return fmt.Errorf("badger insert post: %w", err)
	}
	return nil
}

// InsertPostUnique reads and rewrites a per-title claim key alongside the
// scan, so two concurrent inserts of one title conflict on commit and the
// loser retries into the duplicate check.
func (s *BadgerStore) InsertPostUnique(_ context.Context, p *models.Post) error {
	claim := append(append([]byte{}, titlePrefix...), p.Title...)

	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(claim); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			found, err := scanPosts(txn, func(doc *models.Post) bool {
				return doc.Title == p.Title
			})
			if err != nil {
				return err
			}
			if len(found) > 0 {
				return ErrDuplicate
			}
			if err := txn.Set(claim, nil); err != nil {
				return err
			}
			return setPost(txn, p)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if errors.Is(err, ErrDuplicate) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("badger insert unique post: %w", err)
	}
	return nil
}

func (s *BadgerStore) ListPosts(_ context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = scanPosts(txn, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger list posts: %w", err)
	}
	return posts, nil
}

func (s *BadgerStore) FindPost(_ context.Context, title string) (*models.Post, error) {
	var found []models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = scanPosts(txn, func(doc *models.Post) bool {
			return doc.Title == title
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger find post: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (s *BadgerStore) DeletePosts(_ context.Context, title string) (int, error) {
	var n int
	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := scanPosts(txn, func(doc *models.Post) bool {
			return doc.Title == title
		})
		if err != nil {
			return err
		}
		for _, p := range found {
			if err := txn.Delete(postKey(p.ID)); err != nil {
				return err
			}
		}
		n = len(found)
		return txn.Delete(append(append([]byte{}, titlePrefix...), title...))
	})
	if err != nil {
		return 0, fmt.Errorf("badger delete posts: %w", err)
	}
	return n, nil
}

func postKey(id string) []byte {
	return append(append([]byte{}, postPrefix...), id...)
}

func setPost(txn *badger.Txn, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return txn.Set(postKey(p.ID), val)
}

// scanPosts walks the posts prefix. Records that fail to decode are skipped.
// A nil match keeps everything.
func scanPosts(txn *badger.Txn, match func(*models.Post) bool) ([]models.Post, error) {
	it := txn.NewIterator(badger.IteratorOptions{Prefix: postPrefix, PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()

	var out []models.Post
	for it.Seek(postPrefix); it.ValidForPrefix(postPrefix); it.Next() {
		item := it.Item()
		var doc models.Post
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
		if err != nil {
			continue
		}
		doc.ID = string(bytes.TrimPrefix(item.Key(), postPrefix))
		if match == nil || match(&doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
