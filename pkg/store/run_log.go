package store

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rexlang/rex/pkg/store/storedefs"
)

func init() {
	initDB["initialize run log table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRunLog))
		return err
	}
}

// NextRunSeq returns the next sequence number of the run log.
func (s *dbStore) NextRunSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRunLog))
		seq = b.Sequence() + 1
		return nil
	})
	return int(seq), err
}

// AddRun appends an entry to the run log.
func (s *dbStore) AddRun(script string, at time.Time) (int, error) {
	var (
		seq uint64
		err error
	)
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRunLog))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), marshalRun(script, at))
	})
	return int(seq), err
}

// Run returns the run log entry with the given sequence number.
func (s *dbStore) Run(seq int) (storedefs.Run, error) {
	var run storedefs.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRunLog))
		v := b.Get(marshalSeq(uint64(seq)))
		if v == nil {
			return storedefs.ErrNoSuchRun
		}
		run = unmarshalRun(seq, v)
		return nil
	})
	return run, err
}

// RunsWithSeq returns all run log entries with sequence numbers in
// [from, upto).
func (s *dbStore) RunsWithSeq(from, upto int) ([]storedefs.Run, error) {
	var runs []storedefs.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRunLog))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			runs = append(runs, unmarshalRun(int(unmarshalSeq(k)), v))
		}
		return nil
	})
	return runs, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// A run is stored as the Unix timestamp in seconds, a space, and the script
// name.
func marshalRun(script string, at time.Time) []byte {
	return []byte(strconv.FormatInt(at.Unix(), 10) + " " + script)
}

func unmarshalRun(seq int, data []byte) storedefs.Run {
	stamp, script, _ := strings.Cut(string(data), " ")
	sec, _ := strconv.ParseInt(stamp, 10, 64)
	return storedefs.Run{Seq: seq, Script: script, At: time.Unix(sec, 0)}
}
