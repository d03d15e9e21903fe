// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package options holds the functional-options builders accepted by the
// collection facade's CRUD methods, following the same Opts-slice pattern
// as the driver this module is modeled on.
package options

import (
	"github.com/basinlabs/mongocore/readpref"
	"github.com/basinlabs/mongocore/writeconcern"
)

// DefaultOrdered is the default value of an InsertMany/BulkWrite operation's
// Ordered option.
const DefaultOrdered = true

// InsertOneOptions configures Collection.InsertOne.
type InsertOneOptions struct {
	BypassDocumentValidation *bool
	Comment                  interface{}
}

// InsertOneOptionsBuilder accumulates InsertOneOptions setters.
type InsertOneOptionsBuilder struct {
	Opts []func(*InsertOneOptions) error
}

// InsertOne starts a new InsertOneOptionsBuilder.
func InsertOne() *InsertOneOptionsBuilder {
	return &InsertOneOptionsBuilder{}
}

// OptionsSetters returns the accumulated setters.
func (b *InsertOneOptionsBuilder) OptionsSetters() []func(*InsertOneOptions) error {
	return b.Opts
}

// SetBypassDocumentValidation sets BypassDocumentValidation.
func (b *InsertOneOptionsBuilder) SetBypassDocumentValidation(v bool) *InsertOneOptionsBuilder {
	b.Opts = append(b.Opts, func(o *InsertOneOptions) error { o.BypassDocumentValidation = &v; return nil })
	return b
}

// SetComment sets Comment.
func (b *InsertOneOptionsBuilder) SetComment(v interface{}) *InsertOneOptionsBuilder {
	b.Opts = append(b.Opts, func(o *InsertOneOptions) error { o.Comment = v; return nil })
	return b
}

// InsertManyOptions configures Collection.InsertMany.
type InsertManyOptions struct {
	BypassDocumentValidation *bool
	Comment                  interface{}
	Ordered                  *bool
}

// InsertManyOptionsBuilder accumulates InsertManyOptions setters.
type InsertManyOptionsBuilder struct {
	Opts []func(*InsertManyOptions) error
}

// InsertMany starts a new InsertManyOptionsBuilder, defaulting Ordered to
// DefaultOrdered.
func InsertMany() *InsertManyOptionsBuilder {
	b := &InsertManyOptionsBuilder{}
	b.SetOrdered(DefaultOrdered)
	return b
}

func (b *InsertManyOptionsBuilder) OptionsSetters() []func(*InsertManyOptions) error {
	return b.Opts
}

func (b *InsertManyOptionsBuilder) SetBypassDocumentValidation(v bool) *InsertManyOptionsBuilder {
	b.Opts = append(b.Opts, func(o *InsertManyOptions) error { o.BypassDocumentValidation = &v; return nil })
	return b
}

func (b *InsertManyOptionsBuilder) SetComment(v interface{}) *InsertManyOptionsBuilder {
	b.Opts = append(b.Opts, func(o *InsertManyOptions) error { o.Comment = v; return nil })
	return b
}

func (b *InsertManyOptionsBuilder) SetOrdered(v bool) *InsertManyOptionsBuilder {
	b.Opts = append(b.Opts, func(o *InsertManyOptions) error { o.Ordered = &v; return nil })
	return b
}

// UpdateOptions configures Collection.UpdateOne/UpdateMany.
type UpdateOptions struct {
	Upsert *bool
	Hint   interface{}
}

type UpdateOptionsBuilder struct {
	Opts []func(*UpdateOptions) error
}

func Update() *UpdateOptionsBuilder { return &UpdateOptionsBuilder{} }

func (b *UpdateOptionsBuilder) OptionsSetters() []func(*UpdateOptions) error { return b.Opts }

func (b *UpdateOptionsBuilder) SetUpsert(v bool) *UpdateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *UpdateOptions) error { o.Upsert = &v; return nil })
	return b
}

func (b *UpdateOptionsBuilder) SetHint(v interface{}) *UpdateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *UpdateOptions) error { o.Hint = v; return nil })
	return b
}

// ReplaceOptions configures Collection.ReplaceOne. It mirrors UpdateOptions;
// kept distinct because a replacement forbids "$"-prefixed keys where an
// update requires them, and the two will diverge as options are added.
type ReplaceOptions struct {
	Upsert *bool
	Hint   interface{}
}

type ReplaceOptionsBuilder struct {
	Opts []func(*ReplaceOptions) error
}

func Replace() *ReplaceOptionsBuilder { return &ReplaceOptionsBuilder{} }

func (b *ReplaceOptionsBuilder) OptionsSetters() []func(*ReplaceOptions) error { return b.Opts }

func (b *ReplaceOptionsBuilder) SetUpsert(v bool) *ReplaceOptionsBuilder {
	b.Opts = append(b.Opts, func(o *ReplaceOptions) error { o.Upsert = &v; return nil })
	return b
}

// DeleteOptions configures Collection.DeleteOne/DeleteMany.
type DeleteOptions struct {
	Hint interface{}
}

type DeleteOptionsBuilder struct {
	Opts []func(*DeleteOptions) error
}

func Delete() *DeleteOptionsBuilder { return &DeleteOptionsBuilder{} }

func (b *DeleteOptionsBuilder) OptionsSetters() []func(*DeleteOptions) error { return b.Opts }

func (b *DeleteOptionsBuilder) SetHint(v interface{}) *DeleteOptionsBuilder {
	b.Opts = append(b.Opts, func(o *DeleteOptions) error { o.Hint = v; return nil })
	return b
}

// FindOptions configures Collection.Find/FindOne. The boolean query flags
// map directly onto wiremessage.QueryFlags bits (spec.md §4.8).
type FindOptions struct {
	Sort            interface{}
	Projection      interface{}
	Skip            *int64
	Limit           *int64
	BatchSize       *int32
	Tailable        *bool
	AwaitData       *bool
	NoCursorTimeout *bool
	OplogReplay     *bool
	Partial         *bool
	Exhaust         *bool
}

type FindOptionsBuilder struct {
	Opts []func(*FindOptions) error
}

func Find() *FindOptionsBuilder { return &FindOptionsBuilder{} }

func (b *FindOptionsBuilder) OptionsSetters() []func(*FindOptions) error { return b.Opts }

func (b *FindOptionsBuilder) SetSort(v interface{}) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Sort = v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetProjection(v interface{}) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Projection = v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetSkip(v int64) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Skip = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetLimit(v int64) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Limit = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetBatchSize(v int32) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.BatchSize = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetTailable(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Tailable = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetAwaitData(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.AwaitData = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetNoCursorTimeout(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.NoCursorTimeout = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetOplogReplay(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.OplogReplay = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetPartial(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Partial = &v; return nil })
	return b
}

func (b *FindOptionsBuilder) SetExhaust(v bool) *FindOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOptions) error { o.Exhaust = &v; return nil })
	return b
}

// CountOptions configures Collection.Count.
type CountOptions struct {
	Skip  *int64
	Limit *int64
	Hint  interface{}
}

type CountOptionsBuilder struct {
	Opts []func(*CountOptions) error
}

func Count() *CountOptionsBuilder { return &CountOptionsBuilder{} }

func (b *CountOptionsBuilder) OptionsSetters() []func(*CountOptions) error { return b.Opts }

func (b *CountOptionsBuilder) SetSkip(v int64) *CountOptionsBuilder {
	b.Opts = append(b.Opts, func(o *CountOptions) error { o.Skip = &v; return nil })
	return b
}

func (b *CountOptionsBuilder) SetLimit(v int64) *CountOptionsBuilder {
	b.Opts = append(b.Opts, func(o *CountOptions) error { o.Limit = &v; return nil })
	return b
}

func (b *CountOptionsBuilder) SetHint(v interface{}) *CountOptionsBuilder {
	b.Opts = append(b.Opts, func(o *CountOptions) error { o.Hint = v; return nil })
	return b
}

// DistinctOptions configures Collection.Distinct.
type DistinctOptions struct {
	Comment interface{}
}

type DistinctOptionsBuilder struct {
	Opts []func(*DistinctOptions) error
}

func Distinct() *DistinctOptionsBuilder { return &DistinctOptionsBuilder{} }

func (b *DistinctOptionsBuilder) OptionsSetters() []func(*DistinctOptions) error { return b.Opts }

func (b *DistinctOptionsBuilder) SetComment(v interface{}) *DistinctOptionsBuilder {
	b.Opts = append(b.Opts, func(o *DistinctOptions) error { o.Comment = v; return nil })
	return b
}

// AggregateOptions configures Collection.Aggregate.
type AggregateOptions struct {
	AllowDiskUse *bool
	BatchSize    *int32
}

type AggregateOptionsBuilder struct {
	Opts []func(*AggregateOptions) error
}

func Aggregate() *AggregateOptionsBuilder { return &AggregateOptionsBuilder{} }

func (b *AggregateOptionsBuilder) OptionsSetters() []func(*AggregateOptions) error { return b.Opts }

func (b *AggregateOptionsBuilder) SetAllowDiskUse(v bool) *AggregateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *AggregateOptions) error { o.AllowDiskUse = &v; return nil })
	return b
}

func (b *AggregateOptionsBuilder) SetBatchSize(v int32) *AggregateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *AggregateOptions) error { o.BatchSize = &v; return nil })
	return b
}

// ReturnDocument controls whether a findAndModify variant returns the
// pre- or post-image of the modified document.
type ReturnDocument int8

const (
	Before ReturnDocument = iota
	After
)

// FindOneAndUpdateOptions configures Collection.FindOneAndUpdate.
type FindOneAndUpdateOptions struct {
	Sort           interface{}
	Projection     interface{}
	Upsert         *bool
	ReturnDocument *ReturnDocument
}

type FindOneAndUpdateOptionsBuilder struct {
	Opts []func(*FindOneAndUpdateOptions) error
}

func FindOneAndUpdate() *FindOneAndUpdateOptionsBuilder { return &FindOneAndUpdateOptionsBuilder{} }

func (b *FindOneAndUpdateOptionsBuilder) OptionsSetters() []func(*FindOneAndUpdateOptions) error {
	return b.Opts
}

func (b *FindOneAndUpdateOptionsBuilder) SetSort(v interface{}) *FindOneAndUpdateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndUpdateOptions) error { o.Sort = v; return nil })
	return b
}

func (b *FindOneAndUpdateOptionsBuilder) SetUpsert(v bool) *FindOneAndUpdateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndUpdateOptions) error { o.Upsert = &v; return nil })
	return b
}

func (b *FindOneAndUpdateOptionsBuilder) SetReturnDocument(v ReturnDocument) *FindOneAndUpdateOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndUpdateOptions) error { o.ReturnDocument = &v; return nil })
	return b
}

// FindOneAndReplaceOptions configures Collection.FindOneAndReplace.
type FindOneAndReplaceOptions struct {
	Sort           interface{}
	Projection     interface{}
	Upsert         *bool
	ReturnDocument *ReturnDocument
}

type FindOneAndReplaceOptionsBuilder struct {
	Opts []func(*FindOneAndReplaceOptions) error
}

func FindOneAndReplace() *FindOneAndReplaceOptionsBuilder { return &FindOneAndReplaceOptionsBuilder{} }

func (b *FindOneAndReplaceOptionsBuilder) OptionsSetters() []func(*FindOneAndReplaceOptions) error {
	return b.Opts
}

func (b *FindOneAndReplaceOptionsBuilder) SetUpsert(v bool) *FindOneAndReplaceOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndReplaceOptions) error { o.Upsert = &v; return nil })
	return b
}

func (b *FindOneAndReplaceOptionsBuilder) SetReturnDocument(v ReturnDocument) *FindOneAndReplaceOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndReplaceOptions) error { o.ReturnDocument = &v; return nil })
	return b
}

// FindOneAndDeleteOptions configures Collection.FindOneAndDelete.
type FindOneAndDeleteOptions struct {
	Sort       interface{}
	Projection interface{}
}

type FindOneAndDeleteOptionsBuilder struct {
	Opts []func(*FindOneAndDeleteOptions) error
}

func FindOneAndDelete() *FindOneAndDeleteOptionsBuilder { return &FindOneAndDeleteOptionsBuilder{} }

func (b *FindOneAndDeleteOptionsBuilder) OptionsSetters() []func(*FindOneAndDeleteOptions) error {
	return b.Opts
}

func (b *FindOneAndDeleteOptionsBuilder) SetSort(v interface{}) *FindOneAndDeleteOptionsBuilder {
	b.Opts = append(b.Opts, func(o *FindOneAndDeleteOptions) error { o.Sort = v; return nil })
	return b
}

// BulkWriteOptions configures Collection.BulkWrite.
type BulkWriteOptions struct {
	Ordered *bool
}

type BulkWriteOptionsBuilder struct {
	Opts []func(*BulkWriteOptions) error
}

func BulkWrite() *BulkWriteOptionsBuilder {
	b := &BulkWriteOptionsBuilder{}
	b.SetOrdered(DefaultOrdered)
	return b
}

func (b *BulkWriteOptionsBuilder) OptionsSetters() []func(*BulkWriteOptions) error { return b.Opts }

func (b *BulkWriteOptionsBuilder) SetOrdered(v bool) *BulkWriteOptionsBuilder {
	b.Opts = append(b.Opts, func(o *BulkWriteOptions) error { o.Ordered = &v; return nil })
	return b
}

// ClientOptions, DatabaseOptions, and CollectionOptions carry the default
// write concern and read preference each level of the client hierarchy
// falls back to when a caller-level option is absent, per the
// caller > collection > database > client precedence resolved by
// writeconcern.Resolve/readpref.Resolve.
type ClientOptions struct {
	WriteConcern *writeconcern.WriteConcern
	ReadPref     *readpref.ReadPref
}

type DatabaseOptions struct {
	WriteConcern *writeconcern.WriteConcern
	ReadPref     *readpref.ReadPref
}

type CollectionOptions struct {
	WriteConcern *writeconcern.WriteConcern
	ReadPref     *readpref.ReadPref
}
