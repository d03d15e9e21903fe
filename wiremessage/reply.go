// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package wiremessage

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Reply is the OP_REPLY message body described by spec.md §6:
// {responseFlags, cursorId, startingFrom, numberReturned, docs[]}.
type Reply struct {
	MsgHeader      Header
	ResponseFlags  ReplyFlags
	CursorID       int64
	StartingFrom   int32
	NumberReturned int32
	Documents      []bson.Raw
}

var _ WireMessage = (*Reply)(nil)

// AppendWireMessage implements WireMessage. The core never originates an
// OP_REPLY (only the server does), but encoding is implemented symmetrically
// so Reply satisfies WireMessage and can be used in tests without a live
// server.
func (r *Reply) AppendWireMessage(dst []byte) ([]byte, error) {
	start := len(dst)

	r.MsgHeader.OpCode = OpReply
	dst = r.MsgHeader.AppendHeader(dst)
	dst = appendInt32(dst, int32(r.ResponseFlags))
	dst = appendInt64(dst, r.CursorID)
	dst = appendInt32(dst, r.StartingFrom)
	dst = appendInt32(dst, int32(len(r.Documents)))

	for _, doc := range r.Documents {
		dst = append(dst, doc...)
	}

	setMessageLength(dst, start)
	return dst, nil
}

// UnmarshalWireMessage implements WireMessage.
func (r *Reply) UnmarshalWireMessage(src []byte) error {
	hdr, err := ReadHeader(src, 0)
	if err != nil {
		return err
	}
	r.MsgHeader = hdr

	pos := int32(headerLen)
	r.ResponseFlags = ReplyFlags(readInt32(src, pos))
	pos += 4
	r.CursorID = readInt64(src, pos)
	pos += 8
	r.StartingFrom = readInt32(src, pos)
	pos += 4
	r.NumberReturned = readInt32(src, pos)
	pos += 4

	docs := make([]bson.Raw, 0, r.NumberReturned)
	for int(pos) < len(src) {
		if int(pos)+4 > len(src) {
			return fmt.Errorf("wiremessage: truncated reply document at offset %d", pos)
		}
		docLen := readInt32(src, pos)
		if docLen < 5 || int(pos)+int(docLen) > len(src) {
			return fmt.Errorf("wiremessage: invalid document length %d at offset %d", docLen, pos)
		}
		docs = append(docs, bson.Raw(src[pos:pos+docLen]))
		pos += docLen
	}
	r.Documents = docs

	return nil
}

// FirstDocument returns docs[0], which is what the core consumes per
// spec.md §6 ("The core consumes docs[0] as the reply document").
func (r *Reply) FirstDocument() (bson.Raw, error) {
	if len(r.Documents) == 0 {
		return nil, fmt.Errorf("wiremessage: OP_REPLY carried no documents")
	}
	return r.Documents[0], nil
}
