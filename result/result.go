// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package result holds the outcome shapes produced by the core, as
// described in spec.md §3: per-document write errors, acknowledgement
// failures, and the composite results returned from each public entry
// point.
package result

import "fmt"

// WriteError is a per-document failure within a batch, indexed relative to
// the original bulk request (spec.md §3).
type WriteError struct {
	Index   int
	Code    int32
	Message string
}

func (e WriteError) Error() string {
	return fmt.Sprintf("write error at index %d (code %d): %s", e.Index, e.Code, e.Message)
}

// WriteConcernError is a single acknowledgement-level failure.
type WriteConcernError struct {
	Code    int32
	Message string
}

func (e WriteConcernError) Error() string {
	return fmt.Sprintf("write concern error (code %d): %s", e.Code, e.Message)
}

// WriteException is attached to single-document result shapes: the server
// reported at least one write error or a write-concern error, but the
// command itself completed (spec.md §7 — "downgraded from bulk into
// single").
type WriteException struct {
	WriteError        *WriteError
	WriteConcernError *WriteConcernError
}

func (e *WriteException) Error() string {
	switch {
	case e.WriteError != nil:
		return e.WriteError.Error()
	case e.WriteConcernError != nil:
		return e.WriteConcernError.Error()
	default:
		return "write exception"
	}
}

// BulkWriteException collects the full, unresolved failure report of a
// batched write (spec.md §3).
type BulkWriteException struct {
	ProcessedRequests   []interface{}
	UnprocessedRequests []interface{}
	WriteErrors         []WriteError
	WriteConcernError   *WriteConcernError
}

func (e *BulkWriteException) Error() string {
	return fmt.Sprintf("bulk write exception: %d write error(s), %d unprocessed request(s)",
		len(e.WriteErrors), len(e.UnprocessedRequests))
}

// HasFailures reports whether e carries any write errors or a
// write-concern error, the trigger condition for attaching an exception to
// a result (spec.md invariant 4).
func (e *BulkWriteException) HasFailures() bool {
	return e != nil && (len(e.WriteErrors) > 0 || e.WriteConcernError != nil)
}

// InsertOneResult is returned by Collection.InsertOne.
type InsertOneResult struct {
	InsertedID interface{}
	Exception  *WriteException
}

// InsertManyResult is returned by Collection.InsertMany.
type InsertManyResult struct {
	InsertedIDs map[int]interface{}
	Exception   *WriteException
}

// UpdateResult is returned by Collection.UpdateOne/UpdateMany/ReplaceOne.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    interface{}
	Exception     *WriteException
}

// DeleteResult is returned by Collection.DeleteOne/DeleteMany.
type DeleteResult struct {
	DeletedCount int64
	Exception    *WriteException
}

// BulkWriteResult is returned by Collection.BulkWrite.
type BulkWriteResult struct {
	InsertedCount int64
	MatchedCount  int64
	ModifiedCount int64
	DeletedCount  int64
	UpsertedCount int64
	InsertedIDs   map[int]interface{}
	UpsertedIDs   map[int]interface{}
	Exception     *BulkWriteException
}
