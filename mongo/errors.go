// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"errors"
	"fmt"

	"github.com/basinlabs/mongocore/command"
	"github.com/basinlabs/mongocore/result"
	"github.com/basinlabs/mongocore/validate"
)

// ArgumentError reports a client-side validation failure caught before
// dispatch, such as a replacement document carrying a "$"-prefixed key.
type ArgumentError struct {
	cause error
}

func (e *ArgumentError) Error() string { return fmt.Sprintf("mongo: invalid argument: %v", e.cause) }
func (e *ArgumentError) Unwrap() error  { return e.cause }

// OperationError reports that the server refused a command outright: its
// reply carried "ok:0" (a *validate.CommandError), as opposed to per-document
// write errors inside an otherwise successful reply.
type OperationError struct {
	msg string
}

func (e *OperationError) Error() string { return "mongo: operation error: " + e.msg }

// ResponseError reports a reply document missing a field the core requires
// or carrying it with the wrong BSON type.
type ResponseError struct {
	msg string
}

func (e *ResponseError) Error() string { return "mongo: malformed response: " + e.msg }

// WriteError wraps a *result.WriteException from a single-document write.
type WriteError struct {
	*result.WriteException
}

func (e *WriteError) Error() string { return e.WriteException.Error() }
func (e *WriteError) Unwrap() error  { return e.WriteException }

// BulkWriteError wraps a *result.BulkWriteException from a batched write.
type BulkWriteError struct {
	*result.BulkWriteException
}

func (e *BulkWriteError) Error() string { return e.BulkWriteException.Error() }
func (e *BulkWriteError) Unwrap() error  { return e.BulkWriteException }

// IoError wraps a transport failure surfaced by the dispatcher.
type IoError struct {
	cause error
}

func (e *IoError) Error() string { return fmt.Sprintf("mongo: i/o error: %v", e.cause) }
func (e *IoError) Unwrap() error  { return e.cause }

// DecodeError wraps a BSON decode failure.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("mongo: decode error: %v", e.cause) }
func (e *DecodeError) Unwrap() error  { return e.cause }

func argumentError(err error) error {
	return &ArgumentError{cause: err}
}

// translateDispatchError classifies an error surfaced from a CommandFunc
// call (dispatch.Dispatcher.Command or bulk.Execute) into the taxonomy
// above: a *validate.CommandError means the server refused the command
// outright (ok:0); a command.ErrArgument means client-side validation
// inside the bulk engine rejected a model; anything else is a transport
// failure.
func translateDispatchError(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *validate.CommandError
	if errors.As(err, &cmdErr) {
		return &OperationError{msg: cmdErr.Error()}
	}
	var argErr command.ErrArgument
	if errors.As(err, &argErr) {
		return argumentError(argErr)
	}
	return &IoError{cause: err}
}
