// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package validate is the Result Validator (spec.md §4.3): it inspects a
// reply document and raises structured write/bulk-write exceptions from the
// server error fields listed in spec.md §6.
package validate

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/result"
	"github.com/basinlabs/mongocore/writeconcern"
)

// CommandError reports an "ok:0" command-level failure — a malformed
// command or auth failure, per spec.md §9's open question. It is raised
// before write-result validation is attempted.
type CommandError struct {
	Code    int32
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command error (code %d): %s", e.Code, e.Message)
}

// Upserted is a single {index, _id} entry from a reply's "upserted" array.
type Upserted struct {
	Index int
	ID    interface{}
}

// Reply is the set of fields the core consumes from a server reply
// document, per spec.md §6.
type Reply struct {
	OK                bool
	ErrMsg            string
	Code              int32
	N                 int64
	NModified         int64
	Upserted          []Upserted
	WriteErrors       []result.WriteError
	WriteConcernError *result.WriteConcernError
}

// ParseReply extracts the fields the core cares about from a raw reply
// document. Unknown fields are ignored.
func ParseReply(doc bson.D) Reply {
	r := Reply{OK: true}

	for _, elem := range doc {
		switch elem.Key {
		case "ok":
			r.OK = isOK(elem.Value)
		case "errmsg":
			if s, ok := elem.Value.(string); ok {
				r.ErrMsg = s
			}
		case "code":
			r.Code = toInt32(elem.Value)
		case "n":
			r.N = toInt64(elem.Value)
		case "nModified":
			r.NModified = toInt64(elem.Value)
		case "upserted":
			r.Upserted = parseUpserted(elem.Value)
		case "writeErrors":
			r.WriteErrors = parseWriteErrors(elem.Value)
		case "writeConcernError":
			r.WriteConcernError = parseWriteConcernError(elem.Value)
		}
	}

	return r
}

func isOK(v interface{}) bool {
	switch t := v.(type) {
	case float64:
		return t == 1
	case int32:
		return t == 1
	case int64:
		return t == 1
	case bool:
		return t
	default:
		return false
	}
}

func toInt32(v interface{}) int32 {
	switch t := v.(type) {
	case int32:
		return t
	case int64:
		return int32(t)
	case float64:
		return int32(t)
	default:
		return 0
	}
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asDocSlice(v interface{}) []bson.D {
	switch t := v.(type) {
	case bson.A:
		out := make([]bson.D, 0, len(t))
		for _, item := range t {
			if d, ok := item.(bson.D); ok {
				out = append(out, d)
			}
		}
		return out
	case []bson.D:
		return t
	default:
		return nil
	}
}

func docLookup(doc bson.D, key string) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func parseUpserted(v interface{}) []Upserted {
	var out []Upserted
	for _, doc := range asDocSlice(v) {
		var u Upserted
		if idx, ok := docLookup(doc, "index"); ok {
			u.Index = int(toInt64(idx))
		}
		if id, ok := docLookup(doc, "_id"); ok {
			u.ID = id
		}
		out = append(out, u)
	}
	return out
}

func parseWriteErrors(v interface{}) []result.WriteError {
	var out []result.WriteError
	for _, doc := range asDocSlice(v) {
		we := result.WriteError{}
		if idx, ok := docLookup(doc, "index"); ok {
			we.Index = int(toInt64(idx))
		}
		if code, ok := docLookup(doc, "code"); ok {
			we.Code = toInt32(code)
		}
		if msg, ok := docLookup(doc, "errmsg"); ok {
			if s, ok := msg.(string); ok {
				we.Message = s
			}
		}
		out = append(out, we)
	}
	return out
}

func parseWriteConcernError(v interface{}) *result.WriteConcernError {
	doc, ok := v.(bson.D)
	if !ok {
		return nil
	}
	wce := &result.WriteConcernError{}
	if code, ok := docLookup(doc, "code"); ok {
		wce.Code = toInt32(code)
	}
	if msg, ok := docLookup(doc, "errmsg"); ok {
		if s, ok := msg.(string); ok {
			wce.Message = s
		}
	}
	return wce
}

// ValidateCommand maps an "ok:0" reply to a CommandError. It must be called
// before WriteResult/BulkWriteResult, since a command-level
// failure carries no writeErrors to interpret.
func ValidateCommand(r Reply) error {
	if r.OK {
		return nil
	}
	msg := r.ErrMsg
	if msg == "" {
		msg = "command failed"
	}
	return &CommandError{Code: r.Code, Message: msg}
}

// WriteResult examines a single-operation reply's writeErrors/
// writeConcernError and raises a *result.WriteException carrying the first
// write error, per spec.md §4.3 and §7 ("first write-error becomes the
// single WriteException.write_error"). With unacknowledged writes (w==0),
// always returns nil: the server does not reply with acknowledgement
// fields, so there is nothing to validate.
func WriteResult(r Reply, wc *writeconcern.WriteConcern) *result.WriteException {
	if !writeconcern.AckWrite(wc) {
		return nil
	}
	if len(r.WriteErrors) == 0 && r.WriteConcernError == nil {
		return nil
	}

	exc := &result.WriteException{WriteConcernError: r.WriteConcernError}
	if len(r.WriteErrors) > 0 {
		we := r.WriteErrors[0]
		exc.WriteError = &we
	}
	return exc
}

// BulkWriteResult aggregates all writeErrors into a *result.BulkWriteException,
// per spec.md §4.3. Unacknowledged writes always validate as successful.
func BulkWriteResult(r Reply, wc *writeconcern.WriteConcern) *result.BulkWriteException {
	if !writeconcern.AckWrite(wc) {
		return nil
	}
	if len(r.WriteErrors) == 0 && r.WriteConcernError == nil {
		return nil
	}

	return &result.BulkWriteException{
		WriteErrors:       r.WriteErrors,
		WriteConcernError: r.WriteConcernError,
	}
}
