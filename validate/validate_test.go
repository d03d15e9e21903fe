// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/writeconcern"
)

func TestParseReplyOK(t *testing.T) {
	doc := bson.D{{Key: "ok", Value: float64(1)}, {Key: "n", Value: int32(1)}}
	r := ParseReply(doc)
	assert.True(t, r.OK)
	assert.EqualValues(t, 1, r.N)
}

func TestValidateCommandMapsOkZero(t *testing.T) {
	doc := bson.D{{Key: "ok", Value: float64(0)}, {Key: "errmsg", Value: "auth failed"}, {Key: "code", Value: int32(13)}}
	r := ParseReply(doc)
	err := ValidateCommand(r)
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, int32(13), cmdErr.Code)
}

func TestWriteResultUnacknowledgedAlwaysSucceeds(t *testing.T) {
	doc := bson.D{
		{Key: "ok", Value: float64(1)},
		{Key: "writeErrors", Value: bson.A{bson.D{{Key: "index", Value: int32(0)}, {Key: "code", Value: int32(11000)}, {Key: "errmsg", Value: "dup"}}}},
	}
	r := ParseReply(doc)
	assert.Nil(t, WriteResult(r, writeconcern.Unacknowledged()))
}

func TestWriteResultDowngradesFirstWriteError(t *testing.T) {
	doc := bson.D{
		{Key: "ok", Value: float64(1)},
		{Key: "n", Value: int32(1)},
		{Key: "writeErrors", Value: bson.A{
			bson.D{{Key: "index", Value: int32(1)}, {Key: "code", Value: int32(11000)}, {Key: "errmsg", Value: "dup"}},
		}},
	}
	r := ParseReply(doc)
	exc := WriteResult(r, nil)
	require.NotNil(t, exc)
	require.NotNil(t, exc.WriteError)
	assert.Equal(t, 1, exc.WriteError.Index)
	assert.Equal(t, int32(11000), exc.WriteError.Code)
}

func TestWriteResultNoErrorsReturnsNil(t *testing.T) {
	doc := bson.D{{Key: "ok", Value: float64(1)}, {Key: "n", Value: int32(1)}}
	r := ParseReply(doc)
	assert.Nil(t, WriteResult(r, nil))
}

func TestBulkWriteResultAggregatesAllErrors(t *testing.T) {
	doc := bson.D{
		{Key: "ok", Value: float64(1)},
		{Key: "writeErrors", Value: bson.A{
			bson.D{{Key: "index", Value: int32(0)}, {Key: "code", Value: int32(11000)}, {Key: "errmsg", Value: "dup a"}},
			bson.D{{Key: "index", Value: int32(2)}, {Key: "code", Value: int32(11000)}, {Key: "errmsg", Value: "dup b"}},
		}},
	}
	r := ParseReply(doc)
	exc := BulkWriteResult(r, nil)
	require.NotNil(t, exc)
	assert.Len(t, exc.WriteErrors, 2)
	assert.True(t, exc.HasFailures())
}

func TestParseUpsertedEntries(t *testing.T) {
	doc := bson.D{
		{Key: "ok", Value: float64(1)},
		{Key: "upserted", Value: bson.A{
			bson.D{{Key: "index", Value: int32(0)}, {Key: "_id", Value: "generated-id"}},
		}},
	}
	r := ParseReply(doc)
	require.Len(t, r.Upserted, 1)
	assert.Equal(t, 0, r.Upserted[0].Index)
	assert.Equal(t, "generated-id", r.Upserted[0].ID)
}
