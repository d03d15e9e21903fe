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

// DeleteSpec is one element of the "deletes" array in a delete command.
// Limit is 1 (deleteOne) or 0 (deleteMany), per spec.md §4.4.
type DeleteSpec struct {
	Filter bson.D
	Limit  int32
}

// Delete builds the "delete" command document described in spec.md §4.4:
//
//	{delete: <coll>, deletes: [{q, limit}], writeConcern}
func Delete(ns Namespace, specs []DeleteSpec, wc *writeconcern.WriteConcern) bson.D {
	deletes := make(bson.A, len(specs))
	for i, s := range specs {
		deletes[i] = bson.D{
			{Key: "q", Value: s.Filter},
			{Key: "limit", Value: s.Limit},
		}
	}

	cmd := bson.D{
		{Key: "delete", Value: ns.Collection},
		{Key: "deletes", Value: deletes},
	}
	if wcDoc := wc.AsDocument(); wcDoc != nil {
		cmd = append(cmd, bson.E{Key: "writeConcern", Value: wcDoc})
	}
	return cmd
}
