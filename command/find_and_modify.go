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

// FindAndModifyArgs bundles the shared and verb-specific fields of a
// findAndModify command, per spec.md §4.4/§4.9.
type FindAndModifyArgs struct {
	Query  bson.D
	Sort   bson.D
	Fields bson.D

	// Exactly one of the following describes the operation's verb.
	Remove bool
	Update bson.D // set together with Upsert/New when non-nil
	Upsert bool
	New    bool
}

// FindAndModify builds the "findAndModify" command document:
//
//	{findAndModify: <coll>, query, writeConcern, sort?, fields?, <verb-specific>}
//
// where verb-specific is {remove:true} or {update:<doc>, new?, upsert?}.
func FindAndModify(ns Namespace, args FindAndModifyArgs, wc *writeconcern.WriteConcern) bson.D {
	cmd := bson.D{
		{Key: "findAndModify", Value: ns.Collection},
		{Key: "query", Value: args.Query},
	}
	if wcDoc := wc.AsDocument(); wcDoc != nil {
		cmd = append(cmd, bson.E{Key: "writeConcern", Value: wcDoc})
	}
	if args.Sort != nil {
		cmd = append(cmd, bson.E{Key: "sort", Value: args.Sort})
	}
	if args.Fields != nil {
		cmd = append(cmd, bson.E{Key: "fields", Value: args.Fields})
	}

	switch {
	case args.Remove:
		cmd = append(cmd, bson.E{Key: "remove", Value: true})
	default:
		cmd = append(cmd, bson.E{Key: "update", Value: args.Update})
		if args.New {
			cmd = append(cmd, bson.E{Key: "new", Value: true})
		}
		if args.Upsert {
			cmd = append(cmd, bson.E{Key: "upsert", Value: true})
		}
	}

	return cmd
}
