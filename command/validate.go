// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package command

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrArgument is returned by validation helpers that run before dispatch.
// It is never raised by the server.
type ErrArgument struct {
	msg string
}

func (e ErrArgument) Error() string { return e.msg }

func argErrorf(format string, args ...interface{}) error {
	return ErrArgument{msg: fmt.Sprintf(format, args...)}
}

// ValidateReplacement enforces spec.md invariant 5: a replacement document
// contains no top-level key starting with "$".
func ValidateReplacement(doc bson.D) error {
	for _, elem := range doc {
		if strings.HasPrefix(elem.Key, "$") {
			return argErrorf("command: replacement document must not contain top-level key %q starting with '$'", elem.Key)
		}
	}
	return nil
}

// ValidateUpdate enforces spec.md invariant 5: an update document contains
// only top-level keys starting with "$".
func ValidateUpdate(doc bson.D) error {
	if len(doc) == 0 {
		return argErrorf("command: update document must not be empty")
	}
	for _, elem := range doc {
		if !strings.HasPrefix(elem.Key, "$") {
			return argErrorf("command: update document must contain only keys starting with '$', found %q", elem.Key)
		}
	}
	return nil
}
