// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package command

import "go.mongodb.org/mongo-driver/bson"

// Drop builds the "drop" command document that backs Collection.Drop in the
// public surface table (spec.md §6), which spec.md's §4.4 table otherwise
// leaves unbuilt.
func Drop(ns Namespace) bson.D {
	return bson.D{{Key: "drop", Value: ns.Collection}}
}

// FindArgs bundles the optional fields of the modern find command (the
// command-based equivalent of the legacy OP_QUERY cursor), used by
// Collection.Find/FindOne (spec.md §4.8).
type FindArgs struct {
	Filter    bson.D
	Sort      bson.D
	Projection bson.D
	Skip      int64
	Limit     int64
	BatchSize int32
}

// Find builds the "find" command document.
func Find(ns Namespace, args FindArgs) bson.D {
	cmd := bson.D{{Key: "find", Value: ns.Collection}}
	if args.Filter != nil {
		cmd = append(cmd, bson.E{Key: "filter", Value: args.Filter})
	}
	if args.Sort != nil {
		cmd = append(cmd, bson.E{Key: "sort", Value: args.Sort})
	}
	if args.Projection != nil {
		cmd = append(cmd, bson.E{Key: "projection", Value: args.Projection})
	}
	if args.Skip != 0 {
		cmd = append(cmd, bson.E{Key: "skip", Value: args.Skip})
	}
	if args.Limit != 0 {
		cmd = append(cmd, bson.E{Key: "limit", Value: args.Limit})
	}
	cmd = append(cmd, bson.E{Key: "batchSize", Value: args.BatchSize})
	return cmd
}
