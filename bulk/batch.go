// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bulk

// Batch is a homogeneous run of WriteModels sharing a Verb, the unit of
// dispatch described in spec.md §4.6. Indices records, for each model in
// the batch, its position in the original request — needed because
// unordered batching reorders models, and because write-errors must be
// reindexed back to the caller's original list (spec.md §3's WriteError).
type Batch struct {
	Verb    Verb
	Models  []WriteModel
	Indices []int
}

// splitBatches groups models into Batches per spec.md §4.6's policy:
//
//   - Consecutive models sharing a verb form one batch, up to maxBatchSize.
//   - A change of verb forces a batch boundary regardless of ordered.
//   - ordered=true preserves the relative order of the input across
//     batches.
//   - ordered=false clusters batches by verb (all models of the verb that
//     appears first, then all of the next verb to appear, and so on),
//     rather than preserving interleaving.
func splitBatches(models []WriteModel, ordered bool, maxBatchSize int) []Batch {
	if maxBatchSize <= 0 {
		maxBatchSize = 1
	}

	if ordered {
		return splitOrdered(models, maxBatchSize)
	}
	return splitUnordered(models, maxBatchSize)
}

func splitOrdered(models []WriteModel, maxBatchSize int) []Batch {
	var batches []Batch

	i := 0
	for i < len(models) {
		v := models[i].verb()
		j := i
		var ms []WriteModel
		var idx []int
		for j < len(models) && models[j].verb() == v && len(ms) < maxBatchSize {
			ms = append(ms, models[j])
			idx = append(idx, j)
			j++
		}
		batches = append(batches, Batch{Verb: v, Models: ms, Indices: idx})
		i = j
	}

	return batches
}

func splitUnordered(models []WriteModel, maxBatchSize int) []Batch {
	order := []Verb{}
	seen := map[Verb]bool{}
	grouped := map[Verb][]int{}

	for i, m := range models {
		v := m.verb()
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
		grouped[v] = append(grouped[v], i)
	}

	var batches []Batch
	for _, v := range order {
		indices := grouped[v]
		for start := 0; start < len(indices); start += maxBatchSize {
			end := start + maxBatchSize
			if end > len(indices) {
				end = len(indices)
			}

			chunk := indices[start:end]
			ms := make([]WriteModel, len(chunk))
			idx := make([]int, len(chunk))
			for k, originalIdx := range chunk {
				ms[k] = models[originalIdx]
				idx[k] = originalIdx
			}
			batches = append(batches, Batch{Verb: v, Models: ms, Indices: idx})
		}
	}

	return batches
}
