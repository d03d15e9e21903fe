// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/bulk"
	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/wiremessage"
)

func testCollection(t *testing.T, f *fakeServer) (*Collection, func()) {
	t.Helper()
	c, cleanup := newTestClient(t, f)
	coll := c.Database("testdb").Collection("widgets")
	return coll, cleanup
}

func TestInsertOneAssignsObjectIDWhenMissing(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"insert": {okReply(1)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	res, err := coll.InsertOne(context.Background(), bson.D{{Key: "name", Value: "widget"}})
	require.NoError(t, err)
	assert.NotNil(t, res.InsertedID)
	assert.Nil(t, res.Exception)
}

func TestInsertOneKeepsCallerSuppliedID(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"insert": {okReply(1)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	res, err := coll.InsertOne(context.Background(), bson.D{{Key: "_id", Value: "fixed-id"}, {Key: "name", Value: "widget"}})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", res.InsertedID)
}

func TestInsertManyEmptyDocsIsANoop(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	res, err := coll.InsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, f.calls)
	assert.Empty(t, res.InsertedIDs)
}

func TestUpdateOneReportsMatchedAndModifiedCounts(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "n", Value: int64(1)}, {Key: "nModified", Value: int64(1)}}
	f := &fakeServer{replies: map[string][]bson.D{"update": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	res, err := coll.UpdateOne(context.Background(),
		bson.D{{Key: "name", Value: "widget"}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "qty", Value: 2}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(1), res.ModifiedCount)
}

func TestUpdateOneRejectsReplacementDocument(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.UpdateOne(context.Background(), bson.D{}, bson.D{{Key: "name", Value: "widget"}})
	require.Error(t, err)
	var argErr *ArgumentError
	assert.True(t, errors.As(err, &argErr))
	assert.Empty(t, f.calls)
}

func TestReplaceOneRejectsUpdateOperatorDocument(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.ReplaceOne(context.Background(), bson.D{}, bson.D{{Key: "$set", Value: bson.D{{Key: "x", Value: 1}}}})
	require.Error(t, err)
	var argErr *ArgumentError
	assert.True(t, errors.As(err, &argErr))
}

func TestDeleteOneSetsLimitOne(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"delete": {okReply(1)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	res, err := coll.DeleteOne(context.Background(), bson.D{{Key: "name", Value: "widget"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
	require.Len(t, f.calls, 1)

	var limit int32
	for _, e := range f.calls[0] {
		if e.Key != "deletes" {
			continue
		}
		specs := e.Value.(bson.A)
		spec := specs[0].(bson.D)
		for _, se := range spec {
			if se.Key == "limit" {
				limit = se.Value.(int32)
			}
		}
	}
	assert.Equal(t, int32(1), limit)
}

func TestCountReturnsN(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"count": {okReply(5)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	n, err := coll.Count(context.Background(), bson.D{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestDistinctReturnsValues(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "values", Value: bson.A{"a", "b"}}}
	f := &fakeServer{replies: map[string][]bson.D{"distinct": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	values, err := coll.Distinct(context.Background(), "name", bson.D{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, values)
}

func TestFindOneReturnsDocument(t *testing.T) {
	batch := bson.A{bson.D{{Key: "name", Value: "widget"}}}
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: batch}}}}
	f := &fakeServer{replies: map[string][]bson.D{"find": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	doc, err := coll.FindOne(context.Background(), bson.D{{Key: "name", Value: "widget"}})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "name", Value: "widget"}}, doc)
}

func TestFindOneReturnsErrNoDocumentsWhenBatchEmpty(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: bson.A{}}}}}
	f := &fakeServer{replies: map[string][]bson.D{"find": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.FindOne(context.Background(), bson.D{})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestAggregateDrainsCursorWithAll(t *testing.T) {
	batch := bson.A{
		bson.D{{Key: "name", Value: "widget"}},
		bson.D{{Key: "name", Value: "gadget"}},
	}
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: batch}}}}
	f := &fakeServer{replies: map[string][]bson.D{"aggregate": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	cur, err := coll.Aggregate(context.Background(), bson.A{bson.D{{Key: "$match", Value: bson.D{}}}})
	require.NoError(t, err)

	var out []bson.D
	require.NoError(t, cur.All(&out))
	assert.Len(t, out, 2)
}

func TestFindThreadsQueryFlagsOntoTheWireMessage(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: bson.A{}}}}}
	f := &fakeServer{replies: map[string][]bson.D{"find": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.Find(context.Background(), bson.D{},
		options.Find().SetTailable(true).SetAwaitData(true).SetNoCursorTimeout(true).
			SetOplogReplay(true).SetPartial(true).SetExhaust(true))
	require.NoError(t, err)

	require.Len(t, f.flagsSeen, 1)
	want := wiremessage.TailableCursor | wiremessage.AwaitData | wiremessage.NoCursorTimeout |
		wiremessage.OplogReplay | wiremessage.Partial | wiremessage.Exhaust
	assert.Equal(t, want, f.flagsSeen[0])
}

func TestFindDefaultsToZeroQueryFlags(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "cursor", Value: bson.D{{Key: "firstBatch", Value: bson.A{}}}}}
	f := &fakeServer{replies: map[string][]bson.D{"find": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.Find(context.Background(), bson.D{})
	require.NoError(t, err)

	require.Len(t, f.flagsSeen, 1)
	assert.Equal(t, wiremessage.QueryFlags(0), f.flagsSeen[0])
}

func TestFindOneAndUpdateReturnsValueDocument(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(1)}, {Key: "value", Value: bson.D{{Key: "name", Value: "widget"}, {Key: "qty", Value: 2}}}}
	f := &fakeServer{replies: map[string][]bson.D{"findAndModify": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	doc, err := coll.FindOneAndUpdate(context.Background(),
		bson.D{{Key: "name", Value: "widget"}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "qty", Value: 2}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "name", Value: "widget"}, {Key: "qty", Value: int32(2)}}, doc)
}

func TestFindOneAndUpdateRejectsReplacementDocument(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.FindOneAndUpdate(context.Background(), bson.D{}, bson.D{{Key: "name", Value: "widget"}})
	require.Error(t, err)
	var argErr *ArgumentError
	assert.True(t, errors.As(err, &argErr))
}

func TestBulkWriteDefaultsToOrdered(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"insert": {okReply(2)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	models := []bulk.WriteModel{
		bulk.InsertOneModel{Document: bson.D{{Key: "name", Value: "a"}}},
		bulk.InsertOneModel{Document: bson.D{{Key: "name", Value: "b"}}},
	}
	res, err := coll.BulkWrite(context.Background(), models)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.InsertedCount)

	require.Len(t, f.calls, 1)
	assert.Equal(t, "ordered", f.calls[0][2].Key)
	assert.Equal(t, true, f.calls[0][2].Value)
}

func TestOperationErrorSurfacesOnCommandFailure(t *testing.T) {
	reply := bson.D{{Key: "ok", Value: float64(0)}, {Key: "errmsg", Value: "not authorized"}, {Key: "code", Value: int32(13)}}
	f := &fakeServer{replies: map[string][]bson.D{"count": {reply}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	_, err := coll.Count(context.Background(), bson.D{})
	require.Error(t, err)
	var opErr *OperationError
	assert.True(t, errors.As(err, &opErr))
}

func TestDropDispatchesDropCommand(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"drop": {okReply(0)}}}
	coll, cleanup := testCollection(t, f)
	defer cleanup()

	err := coll.Drop(context.Background())
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "drop", f.calls[0][0].Key)
}
