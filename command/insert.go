// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package command

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/writeconcern"
)

// Insert builds the "insert" command document described in spec.md §4.4:
//
//	{insert: <coll>, documents: [...], ordered, writeConcern}
func Insert(ns Namespace, docs []bson.D, ordered bool, wc *writeconcern.WriteConcern) bson.D {
	values := make(bson.A, len(docs))
	for i, doc := range docs {
		values[i] = doc
	}

	cmd := bson.D{
		{Key: "insert", Value: ns.Collection},
		{Key: "documents", Value: values},
		{Key: "ordered", Value: ordered},
	}
	if wcDoc := wc.AsDocument(); wcDoc != nil {
		cmd = append(cmd, bson.E{Key: "writeConcern", Value: wcDoc})
	}
	return cmd
}
