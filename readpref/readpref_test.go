// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package readpref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveReturnsFirstNonNil(t *testing.T) {
	caller := New(NearestMode)
	client := Primary()
	assert.Same(t, caller, Resolve(caller, client))
	assert.Same(t, client, Resolve(nil, client))
	assert.Nil(t, Resolve(nil, nil))
}

func TestPrimaryIsPrimaryModeWithNoTagSets(t *testing.T) {
	p := Primary()
	assert.Equal(t, PrimaryMode, p.Mode())
	assert.Empty(t, p.TagSets())
}

func TestNewCarriesTagSets(t *testing.T) {
	tagSet := map[string]string{"region": "us-east"}
	rp := New(SecondaryPreferredMode, tagSet)
	assert.Equal(t, SecondaryPreferredMode, rp.Mode())
	assert.Equal(t, []map[string]string{tagSet}, rp.TagSets())
}

func TestModeStringNames(t *testing.T) {
	cases := map[Mode]string{
		PrimaryMode:            "primary",
		PrimaryPreferredMode:   "primaryPreferred",
		SecondaryMode:          "secondary",
		SecondaryPreferredMode: "secondaryPreferred",
		NearestMode:            "nearest",
		Mode(99):               "unknown",
	}
	for mode, want := range cases {
		assert.Equal(t, want, mode.String())
	}
}
