// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package command

import "go.mongodb.org/mongo-driver/bson"

// AggregateArgs bundles the optional fields of an "aggregate" command.
type AggregateArgs struct {
	Pipeline     bson.A
	BatchSize    int32
	AllowDiskUse bool
}

// Aggregate builds the "aggregate" command document:
//
//	{aggregate: <coll>, pipeline: [...], cursor: {batchSize}, allowDiskUse?}
//
// allowDiskUse is only emitted when true, matching spec.md §8's boundary
// behavior ("allowDiskUse=false is omitted from aggregate command").
func Aggregate(ns Namespace, args AggregateArgs) bson.D {
	pipeline := args.Pipeline
	if pipeline == nil {
		pipeline = bson.A{}
	}

	cmd := bson.D{
		{Key: "aggregate", Value: ns.Collection},
		{Key: "pipeline", Value: pipeline},
		{Key: "cursor", Value: bson.D{{Key: "batchSize", Value: args.BatchSize}}},
	}
	if args.AllowDiskUse {
		cmd = append(cmd, bson.E{Key: "allowDiskUse", Value: true})
	}
	return cmd
}
