/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package bolt is a storage.Storage backed by a BoltDB file.
package bolt

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Comcast/regular/storage"

	bolt "go.etcd.io/bbolt"
)

// Bucket is the BoltDB bucket that holds spec sources.
var Bucket = []byte("specs")

// Storage stores spec sources in a BoltDB file.
type Storage struct {
	Debug bool

	filename string
	db       *bolt.DB
}

// NewStorage makes a Storage for the given file.  Call Open before
// using it.
func NewStorage(filename string) *Storage {
	return &Storage{
		filename: filename,
	}
}

// Open opens (or creates) the database file.
//
// BoltDB allows only one process to open a file at a time, so Open
// gives up after a second.
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

var NotOpen = errors.New("storage not open")

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) Put(ctx context.Context, name string, src []byte) error {
	s.logf("Put %s (%d bytes)", name, len(src))
	if err := storage.CheckName(name); err != nil {
		return err
	}
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Put([]byte(name), src)
	})
}

func (s *Storage) Get(ctx context.Context, name string) ([]byte, error) {
	s.logf("Get %s", name)
	if s.db == nil {
		return nil, NotOpen
	}
	var src []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Values are only valid during the transaction.
		if bs := tx.Bucket(Bucket).Get([]byte(name)); bs != nil {
			src = append([]byte{}, bs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, &storage.NotFound{Name: name}
	}
	return src, nil
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	s.logf("Delete %s", name)
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Delete([]byte(name))
	})
}

func (s *Storage) List(ctx context.Context) ([]string, error) {
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
	s.logf("List found %d specs", len(names))
	return names, nil
}
