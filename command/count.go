// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package command

import "go.mongodb.org/mongo-driver/bson"

// CountArgs bundles the optional fields of a "count" command.
type CountArgs struct {
	Skip  int64
	Limit int64
	Query bson.D
	// Hint takes precedence over HintString when both are set, per
	// spec.md §4.4 ("hint-document takes precedence over hint-string").
	Hint       bson.D
	HintString string
}

// Count builds the "count" command document:
//
//	{count: <coll>, skip, limit, query?, hint?}
func Count(ns Namespace, args CountArgs) bson.D {
	cmd := bson.D{
		{Key: "count", Value: ns.Collection},
		{Key: "skip", Value: args.Skip},
		{Key: "limit", Value: args.Limit},
	}
	if args.Query != nil {
		cmd = append(cmd, bson.E{Key: "query", Value: args.Query})
	}
	switch {
	case args.Hint != nil:
		cmd = append(cmd, bson.E{Key: "hint", Value: args.Hint})
	case args.HintString != "":
		cmd = append(cmd, bson.E{Key: "hint", Value: args.HintString})
	}
	return cmd
}

// Distinct builds the "distinct" command document:
//
//	{distinct: <coll>, key, query?}
func Distinct(ns Namespace, key string, query bson.D) bson.D {
	cmd := bson.D{
		{Key: "distinct", Value: ns.Collection},
		{Key: "key", Value: key},
	}
	if query != nil {
		cmd = append(cmd, bson.E{Key: "query", Value: query})
	}
	return cmd
}
