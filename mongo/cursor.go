// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// Cursor iterates the documents of a find/aggregate reply's cursor.firstBatch.
// Per spec.md §6's scope, it never issues getMore: the batch it was
// constructed with is the entirety of the result set it can serve.
type Cursor struct {
	batch   []bson.D
	pos     int
	current bson.D
}

func newCursor(batch []bson.D) *Cursor {
	return &Cursor{batch: batch, pos: -1}
}

// Next advances to the following document, reporting whether one exists.
func (c *Cursor) Next() bool {
	if c.pos+1 >= len(c.batch) {
		return false
	}
	c.pos++
	c.current = c.batch[c.pos]
	return true
}

// Decode unmarshals the document Next most recently advanced to into v.
func (c *Cursor) Decode(v interface{}) error {
	raw, err := bson.Marshal(c.current)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

// All drains every remaining document into v, which must point to a slice.
func (c *Cursor) All(v interface{}) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("mongo: All requires a pointer to a slice, got %T", v)
	}
	sliceVal := ptr.Elem()
	elemType := sliceVal.Type().Elem()

	docs := c.batch[c.pos+1:]
	c.pos = len(c.batch)

	out := reflect.MakeSlice(sliceVal.Type(), 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elemPtr := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elemPtr.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elemPtr.Elem())
	}
	sliceVal.Set(out)
	return nil
}

// Close releases the cursor. There is no server-side resource to free since
// the full result set is already buffered in batch.
func (c *Cursor) Close() error { return nil }
