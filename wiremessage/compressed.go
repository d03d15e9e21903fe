// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package wiremessage

// Compressed is the OP_COMPRESSED message body: an original opcode plus a
// compressed copy of that message's body (header stripped). Mirrors
// core/connection.connection's compressMessage encoding.
type Compressed struct {
	MsgHeader         Header
	OriginalOpCode    OpCode
	UncompressedSize  int32
	CompressorID      uint8
	CompressedMessage []byte
}

var _ WireMessage = (*Compressed)(nil)

// AppendWireMessage implements WireMessage.
func (c *Compressed) AppendWireMessage(dst []byte) ([]byte, error) {
	start := len(dst)

	c.MsgHeader.OpCode = OpCompressed
	dst = c.MsgHeader.AppendHeader(dst)
	dst = appendInt32(dst, int32(c.OriginalOpCode))
	dst = appendInt32(dst, c.UncompressedSize)
	dst = append(dst, c.CompressorID)
	dst = append(dst, c.CompressedMessage...)

	setMessageLength(dst, start)
	return dst, nil
}

// UnmarshalWireMessage implements WireMessage.
func (c *Compressed) UnmarshalWireMessage(src []byte) error {
	hdr, err := ReadHeader(src, 0)
	if err != nil {
		return err
	}
	c.MsgHeader = hdr

	pos := int32(headerLen)
	c.OriginalOpCode = OpCode(readInt32(src, pos))
	pos += 4
	c.UncompressedSize = readInt32(src, pos)
	pos += 4
	c.CompressorID = src[pos]
	pos++
	c.CompressedMessage = src[pos:]

	return nil
}
