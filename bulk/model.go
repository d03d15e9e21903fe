// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bulk is the Bulk Engine (spec.md §4.6): it groups heterogeneous
// write models into homogeneous batches, executes them one after another
// (for both ordered and unordered writes), and aggregates per-batch outcomes
// into a composite result.
package bulk

import "go.mongodb.org/mongo-driver/bson"

// Verb names the command a batch dispatches under.
type Verb uint8

// The three verbs a WriteModel can belong to.
const (
	InsertVerb Verb = iota
	UpdateVerb
	DeleteVerb
)

func (v Verb) String() string {
	switch v {
	case InsertVerb:
		return "insert"
	case UpdateVerb:
		return "update"
	case DeleteVerb:
		return "delete"
	default:
		return "unknown"
	}
}

// WriteModel is one element of a bulk request: a tagged verb plus payload,
// per spec.md §3. Every concrete model below implements it.
type WriteModel interface {
	verb() Verb
}

// InsertOneModel inserts a single document.
type InsertOneModel struct {
	Document bson.D
}

func (InsertOneModel) verb() Verb { return InsertVerb }

// DeleteOneModel deletes at most one document matching Filter.
type DeleteOneModel struct {
	Filter bson.D
}

func (DeleteOneModel) verb() Verb { return DeleteVerb }

// DeleteManyModel deletes every document matching Filter.
type DeleteManyModel struct {
	Filter bson.D
}

func (DeleteManyModel) verb() Verb { return DeleteVerb }

// ReplaceOneModel replaces at most one document matching Filter. Replacement
// must contain no top-level "$"-prefixed key (spec.md invariant 5); this is
// validated before dispatch by the engine, not by the model itself.
type ReplaceOneModel struct {
	Filter      bson.D
	Replacement bson.D
	Upsert      bool
}

func (ReplaceOneModel) verb() Verb { return UpdateVerb }

// UpdateOneModel updates at most one document matching Filter. Update must
// contain only top-level "$"-prefixed keys.
type UpdateOneModel struct {
	Filter bson.D
	Update bson.D
	Upsert bool
}

func (UpdateOneModel) verb() Verb { return UpdateVerb }

// UpdateManyModel updates every document matching Filter.
type UpdateManyModel struct {
	Filter bson.D
	Update bson.D
	Upsert bool
}

func (UpdateManyModel) verb() Verb { return UpdateVerb }
