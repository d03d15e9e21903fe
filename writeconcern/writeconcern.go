// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package writeconcern defines the write durability/acknowledgement options
// attached to writes, and their BSON encoding.
package writeconcern

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// WriteConcern describes the level of acknowledgement requested from the
// server for write operations.
type WriteConcern struct {
	// W is either an int (number of nodes) or a string (e.g. "majority").
	W interface{}
	J *bool
	// WTimeout bounds how long the server waits for the requested
	// acknowledgement before giving up.
	WTimeout time.Duration
}

// New constructs a WriteConcern requesting acknowledgement from w nodes.
func New(w interface{}) *WriteConcern {
	return &WriteConcern{W: w}
}

// Majority returns the commonly used {w: "majority"} write concern.
func Majority() *WriteConcern {
	return &WriteConcern{W: "majority"}
}

// Unacknowledged returns the {w: 0} write concern.
func Unacknowledged() *WriteConcern {
	return &WriteConcern{W: 0}
}

// WithJournal returns a copy of wc with the journal flag set.
func (wc *WriteConcern) WithJournal(j bool) *WriteConcern {
	out := *wc
	out.J = &j
	return &out
}

// AckWrite reports whether wc requests any acknowledgement at all. A nil
// WriteConcern is treated as the server default, which is acknowledged.
func AckWrite(wc *WriteConcern) bool {
	if wc == nil {
		return true
	}
	switch w := wc.W.(type) {
	case int:
		return w != 0
	case int32:
		return w != 0
	case int64:
		return w != 0
	default:
		return true
	}
}

// AsDocument encodes wc as the writeConcern subdocument accepted by
// insert/update/delete/findAndModify commands.
func (wc *WriteConcern) AsDocument() bson.D {
	if wc == nil {
		return nil
	}

	doc := bson.D{}
	if wc.W != nil {
		doc = append(doc, bson.E{Key: "w", Value: wc.W})
	}
	if wc.J != nil {
		doc = append(doc, bson.E{Key: "j", Value: *wc.J})
	}
	if wc.WTimeout > 0 {
		doc = append(doc, bson.E{Key: "wtimeout", Value: wc.WTimeout.Milliseconds()})
	}
	if len(doc) == 0 {
		return nil
	}
	return doc
}

// Resolve implements the "caller > collection > database > client"
// precedence chain described in spec.md §4.4: the first non-nil value wins.
func Resolve(levels ...*WriteConcern) *WriteConcern {
	for _, wc := range levels {
		if wc != nil {
			return wc
		}
	}
	return nil
}
