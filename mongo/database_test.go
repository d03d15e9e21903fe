// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/writeconcern"
)

func TestDatabaseRunCommandReturnsRawReply(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{"ping": {bson.D{{Key: "ok", Value: float64(1)}}}}}
	c, cleanup := newTestClient(t, f)
	defer cleanup()

	reply, err := c.Database("testdb").RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, float64(1), reply[0].Value)
}

func TestCollectionInheritsDatabaseWriteConcernUnlessOverridden(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	c, cleanup := newTestClient(t, f)
	defer cleanup()

	dbWC := writeconcern.Majority()
	db := c.Database("testdb", options.DatabaseOptions{WriteConcern: dbWC})
	coll := db.Collection("widgets")
	assert.Same(t, dbWC, coll.writeConcern())

	collWC := writeconcern.New(1)
	coll2 := db.Collection("widgets", options.CollectionOptions{WriteConcern: collWC})
	assert.Same(t, collWC, coll2.writeConcern())
}

func TestCollectionNameReturnsShortName(t *testing.T) {
	f := &fakeServer{replies: map[string][]bson.D{}}
	c, cleanup := newTestClient(t, f)
	defer cleanup()

	coll := c.Database("testdb").Collection("widgets")
	assert.Equal(t, "widgets", coll.Name())
}
