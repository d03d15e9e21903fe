// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type widget struct {
	Name string `bson:"name"`
	Qty  int    `bson:"qty"`
}

func TestCursorNextAndDecode(t *testing.T) {
	cur := newCursor([]bson.D{
		{{Key: "name", Value: "a"}, {Key: "qty", Value: 1}},
		{{Key: "name", Value: "b"}, {Key: "qty", Value: 2}},
	})

	require.True(t, cur.Next())
	var w widget
	require.NoError(t, cur.Decode(&w))
	assert.Equal(t, widget{Name: "a", Qty: 1}, w)

	require.True(t, cur.Next())
	require.NoError(t, cur.Decode(&w))
	assert.Equal(t, widget{Name: "b", Qty: 2}, w)

	assert.False(t, cur.Next())
}

func TestCursorAllDrainsRemainingDocuments(t *testing.T) {
	cur := newCursor([]bson.D{
		{{Key: "name", Value: "a"}, {Key: "qty", Value: 1}},
		{{Key: "name", Value: "b"}, {Key: "qty", Value: 2}},
		{{Key: "name", Value: "c"}, {Key: "qty", Value: 3}},
	})

	require.True(t, cur.Next())

	var out []widget
	require.NoError(t, cur.All(&out))
	assert.Equal(t, []widget{{Name: "b", Qty: 2}, {Name: "c", Qty: 3}}, out)

	assert.False(t, cur.Next())
}

func TestCursorAllRejectsNonSliceDestination(t *testing.T) {
	cur := newCursor([]bson.D{{{Key: "name", Value: "a"}}})
	var out widget
	err := cur.All(&out)
	assert.Error(t, err)
}

func TestCursorEmptyBatch(t *testing.T) {
	cur := newCursor(nil)
	assert.False(t, cur.Next())
	var out []widget
	require.NoError(t, cur.All(&out))
	assert.Empty(t, out)
}
