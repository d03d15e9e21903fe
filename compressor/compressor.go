// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package compressor implements the wire-message body codecs usable with
// OP_COMPRESSED, mirroring the compressor registry implied by
// core/connection.connection's compressMessage/uncompressMessage pair.
package compressor

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// ID identifies a compressor on the wire (matches the server's
// "compressors" isMaster negotiation values).
type ID uint8

// Recognized compressor ids.
const (
	NoopID   ID = 0
	SnappyID ID = 1
	ZstdID   ID = 3
)

// Compressor compresses and decompresses OP_COMPRESSED payload bytes.
type Compressor interface {
	ID() ID
	Name() string
	CompressBytes(src, dst []byte) ([]byte, error)
	UncompressBytes(src, dst []byte) ([]byte, error)
}

// Snappy wraps github.com/golang/snappy.
type Snappy struct{}

// ID implements Compressor.
func (Snappy) ID() ID { return SnappyID }

// Name implements Compressor.
func (Snappy) Name() string { return "snappy" }

// CompressBytes implements Compressor.
func (Snappy) CompressBytes(src, dst []byte) ([]byte, error) {
	return snappy.Encode(dst[:0], src), nil
}

// UncompressBytes implements Compressor.
func (Snappy) UncompressBytes(src, dst []byte) ([]byte, error) {
	return snappy.Decode(dst[:0], src)
}

// Zstd wraps github.com/klauspost/compress/zstd.
type Zstd struct {
	level zstd.EncoderLevel
}

// NewZstd constructs a Zstd compressor at the default compression level.
func NewZstd() *Zstd {
	return &Zstd{level: zstd.SpeedDefault}
}

// ID implements Compressor.
func (*Zstd) ID() ID { return ZstdID }

// Name implements Compressor.
func (*Zstd) Name() string { return "zstd" }

// CompressBytes implements Compressor.
func (z *Zstd) CompressBytes(src, dst []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(z.level))
	if err != nil {
		return nil, fmt.Errorf("compressor: building zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(src, dst[:0]), nil
}

// UncompressBytes implements Compressor.
func (*Zstd) UncompressBytes(src, dst []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("compressor: building zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(src, dst[:0])
}

// ByName returns the Compressor matching name, or nil if unrecognized.
func ByName(name string) Compressor {
	switch name {
	case "snappy":
		return Snappy{}
	case "zstd":
		return NewZstd()
	default:
		return nil
	}
}
