// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/bulk"
	"github.com/basinlabs/mongocore/command"
	"github.com/basinlabs/mongocore/options"
	"github.com/basinlabs/mongocore/result"
	"github.com/basinlabs/mongocore/validate"
	"github.com/basinlabs/mongocore/wiremessage"
	"github.com/basinlabs/mongocore/writeconcern"
)

// ErrNoDocuments is returned by FindOne and the findAndModify family when no
// document matches the filter.
var ErrNoDocuments = errors.New("mongo: no documents in result")

// Collection performs operations scoped to one namespace. Per spec.md
// §4.7, its fully qualified namespace is computed once at construction
// (Database.Collection), and the struct carries no other mutable state.
type Collection struct {
	client *Client
	db     *Database
	ns     command.Namespace
	opts   options.CollectionOptions
}

// Name returns the collection's short name (the substring after the first
// "." in its namespace).
func (c *Collection) Name() string { return c.ns.Collection }

func applyOpts[O any](setterLists ...[]func(*O) error) (O, error) {
	var out O
	for _, setters := range setterLists {
		for _, set := range setters {
			if err := set(&out); err != nil {
				var zero O
				return zero, err
			}
		}
	}
	return out, nil
}

func (c *Collection) writeConcern() *writeconcern.WriteConcern {
	return writeconcern.Resolve(c.opts.WriteConcern, c.db.opts.WriteConcern, c.client.opts.WriteConcern)
}

func (c *Collection) dispatch(ctx context.Context, cmd bson.D) (validate.Reply, error) {
	reply, err := c.client.dispatcher.Command(ctx, c.ns.DB, cmd)
	if err != nil {
		return validate.Reply{}, &IoError{cause: err}
	}
	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return validate.Reply{}, &OperationError{msg: cmdErr.Error()}
	}
	return r, nil
}

// InsertOne inserts doc, assigning an ObjectID to "_id" if doc does not
// already carry one.
func (c *Collection) InsertOne(ctx context.Context, doc bson.D, opts ...*options.InsertOneOptionsBuilder) (*result.InsertOneResult, error) {
	res, err := c.InsertMany(ctx, []bson.D{doc}, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, err
	}
	out := &result.InsertOneResult{InsertedID: res.InsertedIDs[0]}
	if res.Exception != nil {
		out.Exception = &result.WriteException{WriteError: firstWriteError(res.Exception), WriteConcernError: res.Exception.WriteConcernError}
	}
	return out, nil
}

func firstWriteError(exc *result.BulkWriteException) *result.WriteError {
	if len(exc.WriteErrors) == 0 {
		return nil
	}
	we := exc.WriteErrors[0]
	return &we
}

// InsertMany inserts docs via the Bulk Engine as an all-insert batch,
// assigning ObjectIDs where missing (spec.md §4.5). An empty docs list
// returns a zero InsertManyResult without dispatching (spec.md §8).
func (c *Collection) InsertMany(ctx context.Context, docs []bson.D, opts ...*options.InsertManyOptionsBuilder) (*result.InsertManyResult, error) {
	var setters [][]func(*options.InsertManyOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}
	ordered := options.DefaultOrdered
	if resolved.Ordered != nil {
		ordered = *resolved.Ordered
	}

	if len(docs) == 0 {
		return &result.InsertManyResult{InsertedIDs: map[int]interface{}{}}, nil
	}

	models := make([]bulk.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = bulk.InsertOneModel{Document: d}
	}

	bwr, err := bulk.Execute(ctx, c.client.dispatcher.Command, c.ns, models, ordered, c.writeConcern(), c.client.bulkExecOptions()...)
	if err != nil {
		return nil, translateDispatchError(err)
	}

	out := &result.InsertManyResult{InsertedIDs: bwr.InsertedIDs}
	if bwr.Exception != nil {
		out.Exception = &result.WriteException{WriteError: firstWriteError(bwr.Exception), WriteConcernError: bwr.Exception.WriteConcernError}
	}
	return out, nil
}

// UpdateOne applies update (a document of only "$"-prefixed operators) to
// the first document matching filter.
func (c *Collection) UpdateOne(ctx context.Context, filter, update bson.D, opts ...*options.UpdateOptionsBuilder) (*result.UpdateResult, error) {
	return c.update(ctx, filter, update, false, opts...)
}

// UpdateMany applies update to every document matching filter.
func (c *Collection) UpdateMany(ctx context.Context, filter, update bson.D, opts ...*options.UpdateOptionsBuilder) (*result.UpdateResult, error) {
	return c.update(ctx, filter, update, true, opts...)
}

func (c *Collection) update(ctx context.Context, filter, update bson.D, multi bool, opts ...*options.UpdateOptionsBuilder) (*result.UpdateResult, error) {
	if err := command.ValidateUpdate(update); err != nil {
		return nil, argumentError(err)
	}

	var setters [][]func(*options.UpdateOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}
	upsert := resolved.Upsert != nil && *resolved.Upsert

	spec := command.UpdateSpec{Filter: filter, Update: update, Upsert: upsert, Multi: multi}
	cmd := command.Update(c.ns, []command.UpdateSpec{spec}, c.writeConcern())

	r, err := c.dispatch(ctx, cmd)
	if err != nil {
		return nil, err
	}

	out := &result.UpdateResult{MatchedCount: r.N, ModifiedCount: r.NModified, Exception: validate.WriteResult(r, c.writeConcern())}
	if len(r.Upserted) > 0 {
		out.UpsertedID = r.Upserted[0].ID
	}
	return out, nil
}

// ReplaceOne replaces the first document matching filter with replacement,
// which must contain no top-level "$"-prefixed key.
func (c *Collection) ReplaceOne(ctx context.Context, filter, replacement bson.D, opts ...*options.ReplaceOptionsBuilder) (*result.UpdateResult, error) {
	if err := command.ValidateReplacement(replacement); err != nil {
		return nil, argumentError(err)
	}

	var setters [][]func(*options.ReplaceOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}
	upsert := resolved.Upsert != nil && *resolved.Upsert

	spec := command.UpdateSpec{Filter: filter, Update: replacement, Upsert: upsert}
	cmd := command.Update(c.ns, []command.UpdateSpec{spec}, c.writeConcern())

	r, err := c.dispatch(ctx, cmd)
	if err != nil {
		return nil, err
	}

	out := &result.UpdateResult{MatchedCount: r.N, ModifiedCount: r.NModified, Exception: validate.WriteResult(r, c.writeConcern())}
	if len(r.Upserted) > 0 {
		out.UpsertedID = r.Upserted[0].ID
	}
	return out, nil
}

// DeleteOne removes at most one document matching filter.
func (c *Collection) DeleteOne(ctx context.Context, filter bson.D, opts ...*options.DeleteOptionsBuilder) (*result.DeleteResult, error) {
	return c.delete(ctx, filter, 1)
}

// DeleteMany removes every document matching filter.
func (c *Collection) DeleteMany(ctx context.Context, filter bson.D, opts ...*options.DeleteOptionsBuilder) (*result.DeleteResult, error) {
	return c.delete(ctx, filter, 0)
}

func (c *Collection) delete(ctx context.Context, filter bson.D, limit int32) (*result.DeleteResult, error) {
	cmd := command.Delete(c.ns, []command.DeleteSpec{{Filter: filter, Limit: limit}}, c.writeConcern())

	r, err := c.dispatch(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return &result.DeleteResult{DeletedCount: r.N, Exception: validate.WriteResult(r, c.writeConcern())}, nil
}

// BulkWrite dispatches a heterogeneous batch of WriteModels via the Bulk
// Engine (spec.md §4.6).
func (c *Collection) BulkWrite(ctx context.Context, models []bulk.WriteModel, opts ...*options.BulkWriteOptionsBuilder) (*result.BulkWriteResult, error) {
	var setters [][]func(*options.BulkWriteOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}
	ordered := options.DefaultOrdered
	if resolved.Ordered != nil {
		ordered = *resolved.Ordered
	}

	bwr, err := bulk.Execute(ctx, c.client.dispatcher.Command, c.ns, models, ordered, c.writeConcern(), c.client.bulkExecOptions()...)
	if err != nil {
		return nil, translateDispatchError(err)
	}
	return bwr, nil
}

// Count returns the number of documents matching query.
func (c *Collection) Count(ctx context.Context, query bson.D, opts ...*options.CountOptionsBuilder) (int64, error) {
	var setters [][]func(*options.CountOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return 0, argumentError(err)
	}

	args := command.CountArgs{Query: query, Hint: nil}
	if resolved.Skip != nil {
		args.Skip = *resolved.Skip
	}
	if resolved.Limit != nil {
		args.Limit = *resolved.Limit
	}
	if hintDoc, ok := resolved.Hint.(bson.D); ok {
		args.Hint = hintDoc
	}
	if hintStr, ok := resolved.Hint.(string); ok {
		args.HintString = hintStr
	}

	cmd := command.Count(c.ns, args)
	r, err := c.dispatch(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return r.N, nil
}

// Distinct returns the distinct values of key among documents matching
// query.
func (c *Collection) Distinct(ctx context.Context, key string, query bson.D, opts ...*options.DistinctOptionsBuilder) ([]interface{}, error) {
	cmd := command.Distinct(c.ns, key, query)
	reply, err := c.client.dispatcher.Command(ctx, c.ns.DB, cmd)
	if err != nil {
		return nil, &IoError{cause: err}
	}

	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return nil, &OperationError{msg: cmdErr.Error()}
	}

	for _, elem := range reply {
		if elem.Key == "values" {
			if values, ok := elem.Value.(bson.A); ok {
				return []interface{}(values), nil
			}
		}
	}
	return nil, &ResponseError{msg: "distinct reply missing \"values\" array"}
}

// Aggregate runs pipeline and returns a single-batch Cursor over
// cursor.firstBatch (spec.md §6 — getMore/batch-fetch beyond the first
// batch is out of scope).
func (c *Collection) Aggregate(ctx context.Context, pipeline bson.A, opts ...*options.AggregateOptionsBuilder) (*Cursor, error) {
	var setters [][]func(*options.AggregateOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}

	args := command.AggregateArgs{Pipeline: pipeline}
	if resolved.AllowDiskUse != nil {
		args.AllowDiskUse = *resolved.AllowDiskUse
	}
	if resolved.BatchSize != nil {
		args.BatchSize = *resolved.BatchSize
	}

	cmd := command.Aggregate(c.ns, args)
	reply, err := c.client.dispatcher.Command(ctx, c.ns.DB, cmd)
	if err != nil {
		return nil, &IoError{cause: err}
	}

	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return nil, &OperationError{msg: cmdErr.Error()}
	}

	batch, err := firstBatch(reply)
	if err != nil {
		return nil, err
	}
	return newCursor(batch), nil
}

// Find runs a find-style query and returns a single-batch Cursor.
func (c *Collection) Find(ctx context.Context, filter bson.D, opts ...*options.FindOptionsBuilder) (*Cursor, error) {
	var setters [][]func(*options.FindOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}

	args := command.FindArgs{Filter: filter}
	if sortDoc, ok := resolved.Sort.(bson.D); ok {
		args.Sort = sortDoc
	}
	if projDoc, ok := resolved.Projection.(bson.D); ok {
		args.Projection = projDoc
	}
	if resolved.Skip != nil {
		args.Skip = *resolved.Skip
	}
	if resolved.Limit != nil {
		args.Limit = *resolved.Limit
	}
	if resolved.BatchSize != nil {
		args.BatchSize = *resolved.BatchSize
	}

	var flags wiremessage.QueryFlags
	if resolved.Tailable != nil && *resolved.Tailable {
		flags |= wiremessage.TailableCursor
	}
	if resolved.AwaitData != nil && *resolved.AwaitData {
		flags |= wiremessage.AwaitData
	}
	if resolved.NoCursorTimeout != nil && *resolved.NoCursorTimeout {
		flags |= wiremessage.NoCursorTimeout
	}
	if resolved.OplogReplay != nil && *resolved.OplogReplay {
		flags |= wiremessage.OplogReplay
	}
	if resolved.Partial != nil && *resolved.Partial {
		flags |= wiremessage.Partial
	}
	if resolved.Exhaust != nil && *resolved.Exhaust {
		flags |= wiremessage.Exhaust
	}

	cmd := command.Find(c.ns, args)
	reply, err := c.client.dispatcher.CommandWithFlags(ctx, c.ns.DB, cmd, flags)
	if err != nil {
		return nil, &IoError{cause: err}
	}

	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return nil, &OperationError{msg: cmdErr.Error()}
	}

	batch, err := firstBatch(reply)
	if err != nil {
		return nil, err
	}
	return newCursor(batch), nil
}

// FindOne applies limit=1 to Find and returns the first document, or
// ErrNoDocuments if none matched.
func (c *Collection) FindOne(ctx context.Context, filter bson.D, opts ...*options.FindOptionsBuilder) (bson.D, error) {
	all := append([]*options.FindOptionsBuilder{options.Find().SetLimit(1)}, opts...)
	cur, err := c.Find(ctx, filter, all...)
	if err != nil {
		return nil, err
	}
	if !cur.Next() {
		return nil, ErrNoDocuments
	}
	var out bson.D
	if err := cur.Decode(&out); err != nil {
		return nil, &DecodeError{cause: err}
	}
	return out, nil
}

// FindOneAndDelete removes the first document matching filter and returns
// its pre-deletion state.
func (c *Collection) FindOneAndDelete(ctx context.Context, filter bson.D, opts ...*options.FindOneAndDeleteOptionsBuilder) (bson.D, error) {
	var setters [][]func(*options.FindOneAndDeleteOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}

	args := command.FindAndModifyArgs{Query: filter, Remove: true}
	if sortDoc, ok := resolved.Sort.(bson.D); ok {
		args.Sort = sortDoc
	}
	if projDoc, ok := resolved.Projection.(bson.D); ok {
		args.Fields = projDoc
	}

	return c.findAndModify(ctx, args)
}

// FindOneAndReplace replaces the first document matching filter.
// Replacement must contain no top-level "$"-prefixed key.
func (c *Collection) FindOneAndReplace(ctx context.Context, filter, replacement bson.D, opts ...*options.FindOneAndReplaceOptionsBuilder) (bson.D, error) {
	if err := command.ValidateReplacement(replacement); err != nil {
		return nil, argumentError(err)
	}

	var setters [][]func(*options.FindOneAndReplaceOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}

	args := command.FindAndModifyArgs{Query: filter, Update: replacement}
	if sortDoc, ok := resolved.Sort.(bson.D); ok {
		args.Sort = sortDoc
	}
	if projDoc, ok := resolved.Projection.(bson.D); ok {
		args.Fields = projDoc
	}
	if resolved.Upsert != nil {
		args.Upsert = *resolved.Upsert
	}
	if resolved.ReturnDocument != nil && *resolved.ReturnDocument == options.After {
		args.New = true
	}

	return c.findAndModify(ctx, args)
}

// FindOneAndUpdate applies update to the first document matching filter.
// Update must contain only top-level "$"-prefixed keys.
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter, update bson.D, opts ...*options.FindOneAndUpdateOptionsBuilder) (bson.D, error) {
	if err := command.ValidateUpdate(update); err != nil {
		return nil, argumentError(err)
	}

	var setters [][]func(*options.FindOneAndUpdateOptions) error
	for _, o := range opts {
		if o != nil {
			setters = append(setters, o.OptionsSetters())
		}
	}
	resolved, err := applyOpts(setters...)
	if err != nil {
		return nil, argumentError(err)
	}

	args := command.FindAndModifyArgs{Query: filter, Update: update}
	if sortDoc, ok := resolved.Sort.(bson.D); ok {
		args.Sort = sortDoc
	}
	if projDoc, ok := resolved.Projection.(bson.D); ok {
		args.Fields = projDoc
	}
	if resolved.Upsert != nil {
		args.Upsert = *resolved.Upsert
	}
	if resolved.ReturnDocument != nil && *resolved.ReturnDocument == options.After {
		args.New = true
	}

	return c.findAndModify(ctx, args)
}

func (c *Collection) findAndModify(ctx context.Context, args command.FindAndModifyArgs) (bson.D, error) {
	cmd := command.FindAndModify(c.ns, args, c.writeConcern())
	reply, err := c.client.dispatcher.Command(ctx, c.ns.DB, cmd)
	if err != nil {
		return nil, &IoError{cause: err}
	}

	r := validate.ParseReply(reply)
	if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
		return nil, &OperationError{msg: cmdErr.Error()}
	}

	for _, elem := range reply {
		if elem.Key != "value" {
			continue
		}
		if elem.Value == nil {
			return nil, ErrNoDocuments
		}
		doc, ok := elem.Value.(bson.D)
		if !ok {
			return nil, &ResponseError{msg: "findAndModify \"value\" field has unexpected type"}
		}
		return doc, nil
	}
	return nil, ErrNoDocuments
}

// Drop removes the entire collection.
func (c *Collection) Drop(ctx context.Context) error {
	cmd := command.Drop(c.ns)
	_, err := c.dispatch(ctx, cmd)
	return err
}

func firstBatch(reply bson.D) ([]bson.D, error) {
	for _, elem := range reply {
		if elem.Key != "cursor" {
			continue
		}
		cursorDoc, ok := elem.Value.(bson.D)
		if !ok {
			return nil, &ResponseError{msg: "reply \"cursor\" field has unexpected type"}
		}
		for _, ce := range cursorDoc {
			if ce.Key != "firstBatch" {
				continue
			}
			arr, ok := ce.Value.(bson.A)
			if !ok {
				return nil, &ResponseError{msg: "cursor \"firstBatch\" field has unexpected type"}
			}
			out := make([]bson.D, 0, len(arr))
			for _, v := range arr {
				if doc, ok := v.(bson.D); ok {
					out = append(out, doc)
				}
			}
			return out, nil
		}
	}
	return nil, &ResponseError{msg: "reply missing \"cursor.firstBatch\""}
}
