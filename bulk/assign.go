// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bulk

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/objectid"
)

// ensureID is the Identifier Assigner (spec.md §4.5): it returns doc
// unchanged if it already carries a top-level "_id", and otherwise returns
// a copy with a freshly generated ObjectID prepended as "_id", along with
// the id that was used. The id is prepended rather than appended so the
// wire-level "_id" convention (leading field) is preserved even though BSON
// itself does not require field order for lookup.
func ensureID(doc bson.D) (bson.D, interface{}) {
	for _, elem := range doc {
		if elem.Key == "_id" {
			return doc, elem.Value
		}
	}

	id := objectid.New()
	return withID(doc, id), id
}

// withID returns doc with "_id" set to id: unchanged if doc already carries
// an "_id" (id is assumed to be that existing value, as returned by
// ensureID), or with id prepended otherwise. Kept separate from ensureID so
// callers that already resolved an id (Execute, crediting InsertedIDs) can
// rebuild the same document deterministically instead of re-deriving a new
// random id.
func withID(doc bson.D, id interface{}) bson.D {
	for _, elem := range doc {
		if elem.Key == "_id" {
			return doc
		}
	}

	out := make(bson.D, 0, len(doc)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	out = append(out, doc...)
	return out
}
