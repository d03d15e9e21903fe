// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/command"
	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/validate"
)

// Database is a named database scope, borrowing its Client's Connection.
type Database struct {
	client *Client
	name   string
	opts   options.DatabaseOptions
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// Collection returns a handle scoped to name, pre-computing the fully
// qualified "<db>.<collection>" namespace once, per spec.md §4.7.
func (db *Database) Collection(name string, opts ...options.CollectionOptions) *Collection {
	collOpts := options.CollectionOptions{WriteConcern: db.opts.WriteConcern, ReadPref: db.opts.ReadPref}
	for _, o := range opts {
		if o.WriteConcern != nil {
			collOpts.WriteConcern = o.WriteConcern
		}
		if o.ReadPref != nil {
			collOpts.ReadPref = o.ReadPref
		}
	}
	return &Collection{
		client: db.client,
		db:     db,
		ns:     command.NewNamespace(db.name, name),
		opts:   collOpts,
	}
}

// RunCommand dispatches an arbitrary command document against this
// database, for administrative operations the facade does not otherwise
// name (spec.md leaves the admin-command surface to the collaborator
// boundary beyond listCollections/drop).
func (db *Database) RunCommand(ctx context.Context, cmd bson.D) (bson.D, error) {
	reply, err := db.client.dispatcher.Command(ctx, db.name, cmd)
	if err != nil {
		return nil, &IoError{cause: err}
	}
	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return nil, &OperationError{msg: cmdErr.Error()}
	}
	return reply, nil
}
