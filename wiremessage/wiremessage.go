// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package wiremessage implements the byte-level framing described in
// spec.md §6: a little-endian header followed by an opcode-specific body.
// Commands ride the legacy OP_QUERY/OP_REPLY pair against the
// "<db>.$cmd" namespace.
package wiremessage

import (
	"encoding/binary"
	"fmt"
)

// OpCode identifies the shape of a wire message body.
type OpCode int32

// Opcodes used by this module. Only the subset needed to carry commands and
// their replies is implemented; cursor iteration beyond a single batch is
// out of scope (spec.md §1).
const (
	OpReply      OpCode = 1
	OpQuery      OpCode = 2004
	OpCompressed OpCode = 2012
)

func (c OpCode) String() string {
	switch c {
	case OpReply:
		return "OP_REPLY"
	case OpQuery:
		return "OP_QUERY"
	case OpCompressed:
		return "OP_COMPRESSED"
	default:
		return fmt.Sprintf("OpCode(%d)", int32(c))
	}
}

// QueryFlags are the OP_QUERY header flags relevant to spec.md §4.8's
// FindOptions translation.
type QueryFlags int32

// Recognized query flags, one bit per FindOptions field named in spec.md §4.8.
const (
	TailableCursor QueryFlags = 1 << 1
	SlaveOK        QueryFlags = 1 << 2
	OplogReplay    QueryFlags = 1 << 3
	NoCursorTimeout QueryFlags = 1 << 4
	AwaitData      QueryFlags = 1 << 5
	Exhaust        QueryFlags = 1 << 6
	Partial        QueryFlags = 1 << 7
)

// ReplyFlags are the OP_REPLY header flags.
type ReplyFlags int32

// QueryFailure indicates the reply's sole document is a command-failure
// document rather than a normal result.
const QueryFailure ReplyFlags = 1 << 1

// Header is the 16-byte message header common to every opcode.
type Header struct {
	MessageLength int32
	RequestID     int32
	ResponseTo    int32
	OpCode        OpCode
}

const headerLen = 16

// AppendHeader appends the wire-format encoding of h to dst.
func (h Header) AppendHeader(dst []byte) []byte {
	dst = appendInt32(dst, h.MessageLength)
	dst = appendInt32(dst, h.RequestID)
	dst = appendInt32(dst, h.ResponseTo)
	dst = appendInt32(dst, int32(h.OpCode))
	return dst
}

// ReadHeader reads a Header from src at the given position.
func ReadHeader(src []byte, pos int32) (Header, error) {
	if len(src) < int(pos)+headerLen {
		return Header{}, fmt.Errorf("wiremessage: header requires 16 bytes, have %d", len(src)-int(pos))
	}
	return Header{
		MessageLength: readInt32(src, pos),
		RequestID:     readInt32(src, pos+4),
		ResponseTo:    readInt32(src, pos+8),
		OpCode:        OpCode(readInt32(src, pos+12)),
	}, nil
}

// WireMessage is any message body capable of appending itself to a buffer
// (with a freshly computed header) and of unmarshaling itself back out of
// one.
type WireMessage interface {
	AppendWireMessage(dst []byte) ([]byte, error)
	UnmarshalWireMessage(src []byte) error
}

func appendInt32(dst []byte, v int32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return append(dst, b[:]...)
}

func appendInt64(dst []byte, v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return append(dst, b[:]...)
}

func appendCString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

func readInt32(src []byte, pos int32) int32 {
	return int32(binary.LittleEndian.Uint32(src[pos : pos+4]))
}

func readInt64(src []byte, pos int32) int64 {
	return int64(binary.LittleEndian.Uint64(src[pos : pos+8]))
}

func readCString(src []byte, pos int32) (string, int32, error) {
	end := pos
	for {
		if int(end) >= len(src) {
			return "", 0, fmt.Errorf("wiremessage: unterminated cstring")
		}
		if src[end] == 0x00 {
			break
		}
		end++
	}
	return string(src[pos:end]), end + 1, nil
}
