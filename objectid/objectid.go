// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package objectid implements client-side generation of the 12-byte
// identifier used to populate a missing "_id" field on insert.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ObjectID is a 12-byte MongoDB-compatible identifier:
//
//	[0:4]  seconds since the Unix epoch, big-endian
//	[4:7]  a machine/process salt, fixed for the lifetime of the process
//	[7:9]  the low 16 bits of the process id
//	[9:12] a monotonically increasing counter, big-endian, seeded randomly
type ObjectID [12]byte

var (
	processUnique = readMachineSalt()
	objectIDCounter = readCounterSeed()
)

// readMachineSalt derives the 3-byte machine/process salt once per process
// from a random source. Using crypto/rand rather than hashing the hostname
// avoids collisions between processes that share a hostname (containers).
func readMachineSalt() [3]byte {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return b
}

func readCounterSeed() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:]) & 0x00ffffff
}

// New generates a new ObjectID using the current time, the process-wide
// machine salt, the process id, and a monotonically increasing counter.
//
// The source driver this package is modeled on returns an error from
// generation; under normal preconditions id generation cannot fail, so this
// implementation is infallible. A future revision may detect clock
// regression and surface it through a dedicated error channel.
func New() ObjectID {
	return NewFromTime(time.Now())
}

// NewFromTime generates an ObjectID with the given time component, which is
// useful for range queries bracketing a time window.
func NewFromTime(t time.Time) ObjectID {
	var oid ObjectID

	binary.BigEndian.PutUint32(oid[0:4], uint32(t.Unix()))

	oid[4] = processUnique[0]
	oid[5] = processUnique[1]
	oid[6] = processUnique[2]

	pid := os.Getpid()
	oid[7] = byte(pid >> 8)
	oid[8] = byte(pid)

	c := atomic.AddUint32(&objectIDCounter, 1) & 0x00ffffff
	oid[9] = byte(c >> 16)
	oid[10] = byte(c >> 8)
	oid[11] = byte(c)

	return oid
}

// IsZero reports whether oid is the zero ObjectID.
func (oid ObjectID) IsZero() bool {
	return oid == ObjectID{}
}

// Timestamp extracts the time component of oid.
func (oid ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(oid[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Hex returns the canonical lowercase hex representation of oid.
func (oid ObjectID) Hex() string {
	return hex.EncodeToString(oid[:])
}

// String implements fmt.Stringer.
func (oid ObjectID) String() string {
	return fmt.Sprintf("ObjectID(%q)", oid.Hex())
}

// MarshalBSONValue implements bson.ValueMarshaler so an ObjectID can be used
// directly as a bson.D value without an intermediate conversion.
func (oid ObjectID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bsontype.ObjectID, oid[:], nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (oid *ObjectID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bsontype.ObjectID || len(data) != 12 {
		return fmt.Errorf("objectid: cannot unmarshal BSON type %d, length %d into ObjectID", t, len(data))
	}
	copy(oid[:], data)
	return nil
}
