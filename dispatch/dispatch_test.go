// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package dispatch

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basinlabs/mongocore/connection"
	"github.com/basinlabs/mongocore/wiremessage"
)

// fakeServerConn reads one OP_QUERY off nc, decodes it, and writes back an
// OP_REPLY carrying reply as its sole document. It hands the decoded query
// to onQuery so a test can assert on what was sent.
func fakeServerConn(t *testing.T, nc net.Conn, reply bson.D, onQuery func(q *wiremessage.Query)) {
	t.Helper()
	go func() {
		msg, err := readRawMessage(nc)
		if err != nil {
			return
		}
		var q wiremessage.Query
		if err := q.UnmarshalWireMessage(msg); err != nil {
			return
		}
		if onQuery != nil {
			onQuery(&q)
		}

		docBytes, err := bson.Marshal(reply)
		if err != nil {
			return
		}
		r := &wiremessage.Reply{
			MsgHeader:      wiremessage.Header{ResponseTo: q.MsgHeader.RequestID},
			NumberReturned: 1,
			Documents:      []bson.Raw{docBytes},
		}
		out, err := r.AppendWireMessage(nil)
		if err != nil {
			return
		}
		_, _ = nc.Write(out)
	}()
}

func readRawMessage(nc net.Conn) ([]byte, error) {
	var sizeBuf [4]byte
	if _, err := readFull(nc, sizeBuf[:]); err != nil {
		return nil, err
	}
	size := int32(sizeBuf[0]) | int32(sizeBuf[1])<<8 | int32(sizeBuf[2])<<16 | int32(sizeBuf[3])<<24
	msg := make([]byte, size)
	copy(msg, sizeBuf[:])
	if _, err := readFull(nc, msg[4:]); err != nil {
		return nil, err
	}
	return msg, nil
}

func readFull(nc net.Conn, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := nc.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func TestCommandRoundTripsReply(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var gotDB string
	fakeServerConn(t, server, bson.D{{Key: "ok", Value: float64(1)}, {Key: "n", Value: int64(3)}}, func(q *wiremessage.Query) {
		gotDB = q.FullCollectionName
	})

	conn := connection.NewPlain(client)
	d := New(conn, nil)

	reply, err := d.Command(context.Background(), "testdb", bson.D{{Key: "count", Value: "widgets"}})
	require.NoError(t, err)
	assert.Equal(t, "testdb.$cmd", gotDB)

	r := bsonDToMap(reply)
	assert.Equal(t, float64(1), r["ok"])
	assert.Equal(t, int64(3), r["n"])
}

func TestCommandWithFlagsReachesTheWireMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var gotFlags wiremessage.QueryFlags
	fakeServerConn(t, server, bson.D{{Key: "ok", Value: float64(1)}}, func(q *wiremessage.Query) {
		gotFlags = q.Flags
	})

	conn := connection.NewPlain(client)
	d := New(conn, nil)

	wantFlags := wiremessage.TailableCursor | wiremessage.AwaitData | wiremessage.Partial
	_, err := d.CommandWithFlags(context.Background(), "testdb", bson.D{{Key: "find", Value: "widgets"}}, wantFlags)
	require.NoError(t, err)
	assert.Equal(t, wantFlags, gotFlags)
}

func TestCommandDefaultsToZeroFlags(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var gotFlags wiremessage.QueryFlags = 1 << 10
	fakeServerConn(t, server, bson.D{{Key: "ok", Value: float64(1)}}, func(q *wiremessage.Query) {
		gotFlags = q.Flags
	})

	conn := connection.NewPlain(client)
	d := New(conn, nil)

	_, err := d.Command(context.Background(), "testdb", bson.D{{Key: "ping", Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, wiremessage.QueryFlags(0), gotFlags)
}

func TestCommandEachCallUsesADistinctRequestID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ids := make(chan int32, 2)
	go func() {
		for i := 0; i < 2; i++ {
			msg, err := readRawMessage(server)
			if err != nil {
				return
			}
			var q wiremessage.Query
			if err := q.UnmarshalWireMessage(msg); err != nil {
				return
			}
			ids <- q.MsgHeader.RequestID

			docBytes, _ := bson.Marshal(bson.D{{Key: "ok", Value: float64(1)}})
			r := &wiremessage.Reply{
				MsgHeader:      wiremessage.Header{ResponseTo: q.MsgHeader.RequestID},
				NumberReturned: 1,
				Documents:      []bson.Raw{docBytes},
			}
			out, _ := r.AppendWireMessage(nil)
			_, _ = server.Write(out)
		}
	}()

	conn := connection.NewPlain(client)
	d := New(conn, nil)

	_, err := d.Command(context.Background(), "testdb", bson.D{{Key: "ping", Value: 1}})
	require.NoError(t, err)
	_, err = d.Command(context.Background(), "testdb", bson.D{{Key: "ping", Value: 1}})
	require.NoError(t, err)

	first := <-ids
	second := <-ids
	assert.NotEqual(t, first, second)
}

func TestCommandCanceledContextUnblocksImmediately(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	// server deliberately never replies.

	conn := connection.NewPlain(client)
	d := New(conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.Command(ctx, "testdb", bson.D{{Key: "ping", Value: 1}})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Command did not return after context cancellation")
	}
}

func bsonDToMap(d bson.D) map[string]interface{} {
	out := make(map[string]interface{}, len(d))
	for _, e := range d {
		out[e.Key] = e.Value
	}
	return out
}
