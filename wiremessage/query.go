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

// Query is the OP_QUERY message body. Commands ride OP_QUERY against the
// "<db>.$cmd" namespace with Flags/Skip/NumberToReturn fixed per spec.md §6:
// flags as configured by the caller, skip=0, numberToReturn=-1 (single
// document).
type Query struct {
	MsgHeader            Header
	Flags                QueryFlags
	FullCollectionName   string
	NumberToSkip         int32
	NumberToReturn       int32
	Query                bson.D
	ReturnFieldsSelector bson.D
}

var _ WireMessage = (*Query)(nil)

// AppendWireMessage implements WireMessage.
func (q *Query) AppendWireMessage(dst []byte) ([]byte, error) {
	start := len(dst)

	queryBytes, err := bson.Marshal(q.Query)
	if err != nil {
		return nil, fmt.Errorf("wiremessage: encoding query document: %w", err)
	}

	q.MsgHeader.OpCode = OpQuery
	dst = q.MsgHeader.AppendHeader(dst)
	dst = appendInt32(dst, int32(q.Flags))
	dst = appendCString(dst, q.FullCollectionName)
	dst = appendInt32(dst, q.NumberToSkip)
	dst = appendInt32(dst, q.NumberToReturn)
	dst = append(dst, queryBytes...)

	if q.ReturnFieldsSelector != nil {
		selBytes, err := bson.Marshal(q.ReturnFieldsSelector)
		if err != nil {
			return nil, fmt.Errorf("wiremessage: encoding return fields selector: %w", err)
		}
		dst = append(dst, selBytes...)
	}

	setMessageLength(dst, start)
	return dst, nil
}

// UnmarshalWireMessage implements WireMessage.
func (q *Query) UnmarshalWireMessage(src []byte) error {
	hdr, err := ReadHeader(src, 0)
	if err != nil {
		return err
	}
	q.MsgHeader = hdr

	pos := int32(headerLen)
	q.Flags = QueryFlags(readInt32(src, pos))
	pos += 4

	name, next, err := readCString(src, pos)
	if err != nil {
		return err
	}
	q.FullCollectionName = name
	pos = next

	q.NumberToSkip = readInt32(src, pos)
	pos += 4
	q.NumberToReturn = readInt32(src, pos)
	pos += 4

	var doc bson.D
	if err := bson.Unmarshal(src[pos:], &doc); err != nil {
		return fmt.Errorf("wiremessage: decoding query document: %w", err)
	}
	q.Query = doc

	return nil
}

func setMessageLength(dst []byte, start int) {
	length := int32(len(dst) - start)
	dst[start], dst[start+1], dst[start+2], dst[start+3] =
		byte(length), byte(length>>8), byte(length>>16), byte(length>>24)
}
