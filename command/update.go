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

// UpdateSpec is one element of the "updates" array in an update command.
type UpdateSpec struct {
	Filter bson.D
	Update bson.D
	Upsert bool
	Multi  bool
}

// Update builds the "update" command document described in spec.md §4.4:
//
//	{update: <coll>, updates: [{q, u, upsert, multi?}], writeConcern}
//
// "multi" is only emitted when true, matching the skeleton's annotation.
func Update(ns Namespace, specs []UpdateSpec, wc *writeconcern.WriteConcern) bson.D {
	updates := make(bson.A, len(specs))
	for i, s := range specs {
		entry := bson.D{
			{Key: "q", Value: s.Filter},
			{Key: "u", Value: s.Update},
			{Key: "upsert", Value: s.Upsert},
		}
		if s.Multi {
			entry = append(entry, bson.E{Key: "multi", Value: true})
		}
		updates[i] = entry
	}

	cmd := bson.D{
		{Key: "update", Value: ns.Collection},
		{Key: "updates", Value: updates},
	}
	if wcDoc := wc.AsDocument(); wcDoc != nil {
		cmd = append(cmd, bson.E{Key: "writeConcern", Value: wcDoc})
	}
	return cmd
}
