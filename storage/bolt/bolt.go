// Package bolt is a storage.Storage backed by bbolt.
package bolt

import (
	"context"
	"errors"
	"time"

	"github.com/Comcast/matchbox/storage"
	"github.com/Comcast/matchbox/util"

	bolt "go.etcd.io/bbolt"
)

// Bucket is the single bucket that holds spec sources.
var Bucket = []byte("specs")

// NotOpen is returned by operations on a Storage that isn't open.
var NotOpen = errors.New("storage not open")

type Storage struct {
	Log      *util.Logger
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return NotOpen
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Storage) logf(format string, args ...interface{}) {
	s.Log.Logf(format, args...)
}

func (s *Storage) PutSpec(ctx context.Context, name string, src []byte) error {
	s.logf("PutSpec %s (%d bytes)", name, len(src))
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Put([]byte(name), src)
	})
}

func (s *Storage) GetSpec(ctx context.Context, name string) ([]byte, error) {
	s.logf("GetSpec %s", name)
	if s.db == nil {
		return nil, NotOpen
	}
	var src []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(Bucket).Get([]byte(name))
		if bs == nil {
			return &storage.NotFound{Name: name}
		}
		// bs is only valid during the transaction.
		src = append([]byte(nil), bs...)
		return nil
	})
	return src, err
}

func (s *Storage) RemSpec(ctx context.Context, name string) error {
	s.logf("RemSpec %s", name)
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(Bucket)
		key := []byte(name)
		if b.Get(key) == nil {
			return &storage.NotFound{Name: name}
		}
		return b.Delete(key)
	})
}

func (s *Storage) ListSpecs(ctx context.Context) ([]string, error) {
	s.logf("ListSpecs")
	if s.db == nil {
		return nil, NotOpen
	}
	names := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(Bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("ListSpecs found %d specs", len(names))
	return names, nil
}
