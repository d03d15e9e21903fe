// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package command is the Operation Builder (spec.md §4.4): it assembles the
// BSON command document for each CRUD verb from a namespace, filter,
// update/replacement, and effective options.
package command

import "fmt"

// Namespace is the fully-qualified "<database>.<collection>" pair. Per
// spec.md §9's namespace-parsing note, the split is computed once here
// rather than re-walked on every access.
type Namespace struct {
	DB         string
	Collection string
}

// NewNamespace builds a Namespace from its already-separate database and
// collection names.
func NewNamespace(db, collection string) Namespace {
	return Namespace{DB: db, Collection: collection}
}

// FullName returns "<db>.<collection>".
func (ns Namespace) FullName() string {
	return ns.DB + "." + ns.Collection
}

// Validate reports whether both components are non-empty.
func (ns Namespace) Validate() error {
	if ns.DB == "" {
		return fmt.Errorf("command: namespace missing database name")
	}
	if ns.Collection == "" {
		return fmt.Errorf("command: namespace missing collection name")
	}
	return nil
}
