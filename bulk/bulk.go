// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bulk

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/command"
	"github.com/basinlabs/mongocore/internal/logger"
	"github.com/basinlabs/mongocore/metrics"
	"github.com/basinlabs/mongocore/result"
	"github.com/basinlabs/mongocore/validate"
	"github.com/basinlabs/mongocore/writeconcern"
)

// defaultMaxBatchSize caps how many models one command carries, matching
// the server's own write-batch limit. It is not configurable yet; spec.md
// does not call out a need to tune it.
const defaultMaxBatchSize = 1000

// CommandFunc dispatches a single command document against db and returns
// its raw reply, matching dispatch.Dispatcher.Command's signature. Execute
// takes it as a parameter instead of a *dispatch.Dispatcher so it can be
// exercised with a fake in tests without a live connection.
type CommandFunc func(ctx context.Context, db string, cmd bson.D) (bson.D, error)

// ExecuteOption configures Execute's optional observability collaborators.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// WithLogger attaches l; Execute logs a BulkBatchMessage once per dispatched
// batch.
func WithLogger(l *logger.Logger) ExecuteOption {
	return func(c *executeConfig) { c.logger = l }
}

// WithMetrics attaches m; Execute calls ObserveBulkBatch and
// ObserveWriteErrors once per dispatched batch.
func WithMetrics(m *metrics.Metrics) ExecuteOption {
	return func(c *executeConfig) { c.metrics = m }
}

// Execute is the Bulk Engine's entry point (spec.md §4.6): it batches
// models by verb, dispatches each batch, and aggregates the outcomes into a
// single *result.BulkWriteResult. When ordered is true, it halts at the
// first batch reporting a write error and marks every request after the
// failure point — across the remainder of that batch and every later
// batch — as unprocessed, even where the server itself reports no formal
// write error for them (spec.md §8 Scenario 2).
func Execute(ctx context.Context, cmdFunc CommandFunc, ns command.Namespace, models []WriteModel, ordered bool, wc *writeconcern.WriteConcern, opts ...ExecuteOption) (*result.BulkWriteResult, error) {
	var cfg executeConfig
	for _, o := range opts {
		o(&cfg)
	}

	res := &result.BulkWriteResult{
		InsertedIDs: map[int]interface{}{},
		UpsertedIDs: map[int]interface{}{},
	}
	var writeErrors []result.WriteError
	var writeConcernErr *result.WriteConcernError
	var processed []interface{}
	var unprocessed []interface{}

	batches := splitBatches(models, ordered, defaultMaxBatchSize)

	halted := false
	for _, batch := range batches {
		if halted {
			for _, m := range batch.Models {
				unprocessed = append(unprocessed, m)
			}
			continue
		}

		var insertIDs []interface{}
		if batch.Verb == InsertVerb {
			insertIDs = make([]interface{}, len(batch.Models))
			for i, m := range batch.Models {
				_, id := ensureID(m.(InsertOneModel).Document)
				insertIDs[i] = id
			}
		}

		reply, err := dispatchBatch(ctx, cmdFunc, ns, batch, ordered, wc, insertIDs)
		if err != nil {
			return nil, err
		}

		r := validate.ParseReply(reply)
		if cmdErr := validate.ValidateCommand(r); cmdErr != nil {
			return nil, cmdErr
		}

		haltIdx := -1
		if ordered {
			for _, we := range r.WriteErrors {
				if haltIdx == -1 || we.Index < haltIdx {
					haltIdx = we.Index
				}
			}
		}

		applyBatchResult(res, batch, r, haltIdx, insertIDs)

		if cfg.metrics != nil {
			cfg.metrics.ObserveBulkBatch(batch.Verb.String(), len(batch.Models))
			cfg.metrics.ObserveWriteErrors(batch.Verb.String(), len(r.WriteErrors))
		}
		if cfg.logger != nil {
			cfg.logger.Print(logger.LevelDebug, logger.BulkBatchMessage{
				Verb:        batch.Verb.String(),
				Size:        len(batch.Models),
				WriteErrors: len(r.WriteErrors),
			})
		}

		for _, we := range r.WriteErrors {
			original := we
			original.Index = batch.Indices[we.Index]
			writeErrors = append(writeErrors, original)
		}
		if r.WriteConcernError != nil {
			writeConcernErr = r.WriteConcernError
		}

		if ordered && haltIdx != -1 {
			for local := 0; local <= haltIdx; local++ {
				processed = append(processed, batch.Models[local])
			}
			for local := haltIdx + 1; local < len(batch.Models); local++ {
				unprocessed = append(unprocessed, batch.Models[local])
			}
			halted = true
		} else {
			for _, m := range batch.Models {
				processed = append(processed, m)
			}
		}
	}

	if len(writeErrors) > 0 || writeConcernErr != nil || len(unprocessed) > 0 {
		res.Exception = &result.BulkWriteException{
			ProcessedRequests:   processed,
			UnprocessedRequests: unprocessed,
			WriteErrors:         writeErrors,
			WriteConcernError:   writeConcernErr,
		}
	}

	return res, nil
}

// dispatchBatch builds the command document for batch's verb and sends it.
// insertIDs carries the already-resolved "_id" for each model in an
// InsertVerb batch, computed once by the caller so the same id is both sent
// on the wire and credited to InsertedIDs.
func dispatchBatch(ctx context.Context, cmdFunc CommandFunc, ns command.Namespace, batch Batch, ordered bool, wc *writeconcern.WriteConcern, insertIDs []interface{}) (bson.D, error) {
	switch batch.Verb {
	case InsertVerb:
		docs := make([]bson.D, len(batch.Models))
		for i, m := range batch.Models {
			im, ok := m.(InsertOneModel)
			if !ok {
				return nil, fmt.Errorf("bulk: model at index %d tagged InsertVerb but is %T", i, m)
			}
			docs[i] = withID(im.Document, insertIDs[i])
		}
		return cmdFunc(ctx, ns.DB, command.Insert(ns, docs, ordered, wc))

	case UpdateVerb:
		specs := make([]command.UpdateSpec, len(batch.Models))
		for i, m := range batch.Models {
			switch v := m.(type) {
			case ReplaceOneModel:
				if err := command.ValidateReplacement(v.Replacement); err != nil {
					return nil, err
				}
				specs[i] = command.UpdateSpec{Filter: v.Filter, Update: v.Replacement, Upsert: v.Upsert}
			case UpdateOneModel:
				if err := command.ValidateUpdate(v.Update); err != nil {
					return nil, err
				}
				specs[i] = command.UpdateSpec{Filter: v.Filter, Update: v.Update, Upsert: v.Upsert}
			case UpdateManyModel:
				if err := command.ValidateUpdate(v.Update); err != nil {
					return nil, err
				}
				specs[i] = command.UpdateSpec{Filter: v.Filter, Update: v.Update, Upsert: v.Upsert, Multi: true}
			default:
				return nil, fmt.Errorf("bulk: model at index %d tagged UpdateVerb but is %T", i, m)
			}
		}
		return cmdFunc(ctx, ns.DB, command.Update(ns, specs, wc))

	case DeleteVerb:
		specs := make([]command.DeleteSpec, len(batch.Models))
		for i, m := range batch.Models {
			switch v := m.(type) {
			case DeleteOneModel:
				specs[i] = command.DeleteSpec{Filter: v.Filter, Limit: 1}
			case DeleteManyModel:
				specs[i] = command.DeleteSpec{Filter: v.Filter, Limit: 0}
			default:
				return nil, fmt.Errorf("bulk: model at index %d tagged DeleteVerb but is %T", i, m)
			}
		}
		return cmdFunc(ctx, ns.DB, command.Delete(ns, specs, wc))

	default:
		return nil, fmt.Errorf("bulk: unknown verb %d", batch.Verb)
	}
}

// applyBatchResult folds one batch's reply into the accumulating result.
// For an insert batch, InsertedIDs and InsertedCount are credited only for
// indices at or before haltIdx (or every index, when haltIdx is -1:
// unordered, or no error) that carry no write error. Update and delete
// batches take their counts and upserted ids from the reply as reported,
// without consulting haltIdx.
func applyBatchResult(res *result.BulkWriteResult, batch Batch, r validate.Reply, haltIdx int, insertIDs []interface{}) {
	switch batch.Verb {
	case InsertVerb:
		erroredLocal := map[int]bool{}
		for _, we := range r.WriteErrors {
			erroredLocal[we.Index] = true
		}
		for local := range batch.Models {
			if haltIdx != -1 && local > haltIdx {
				break
			}
			if erroredLocal[local] {
				continue
			}
			res.InsertedIDs[batch.Indices[local]] = insertIDs[local]
			res.InsertedCount++
		}

	case UpdateVerb:
		res.MatchedCount += r.N
		res.ModifiedCount += r.NModified
		for _, u := range r.Upserted {
			res.UpsertedIDs[batch.Indices[u.Index]] = u.ID
			res.UpsertedCount++
		}

	case DeleteVerb:
		res.DeletedCount += r.N
	}
}
