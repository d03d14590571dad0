package denylist

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"strings"
	"time"

	"golang.org/x/net/dns/dnsmessage"
)

// interceptingDial is installed as net.Resolver.Dial. It dials the real
// nameserver exactly as net.Dialer would, then wraps the resulting
// connection so outgoing queries can be inspected before they reach the
// wire.
func interceptingDial(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return &interceptConn{
		Conn:    conn,
		tcp:     network == "tcp",
		pending: make(chan []byte, 4),
	}, nil
}

// interceptConn wraps a real DNS connection. A write carrying a query
// for a denied hostname never reaches the wire: instead a synthetic
// NXDOMAIN response is queued and delivered on a later Read, from a
// goroutine — guaranteeing the caller can never observe the forged
// answer synchronously within the Write call that triggered it.
type interceptConn struct {
	net.Conn
	tcp bool

	pending chan []byte
}

func (c *interceptConn) Write(b []byte) (int, error) {
	msg, payload, err := decodeQuery(b, c.tcp)
	if err != nil {
		// Malformed or non-query traffic: pass through unchanged rather
		// than risk breaking a resolver we don't fully understand.
		return c.Conn.Write(b)
	}

	name := questionName(msg)
	if name == "" || !Blocks(name) {
		return c.Conn.Write(b)
	}

	response := buildNXDOMAIN(msg)
	framed := frame(response, c.tcp)
	go func() {
		// Deliver asynchronously: never satisfy the query within this
		// call frame, matching how a real network round trip would
		// resume on a later scheduler tick.
		time.Sleep(0)
		c.pending <- framed
	}()

	return len(payload) + frameOverhead(c.tcp), nil
}

func (c *interceptConn) Read(b []byte) (int, error) {
	select {
	case framed := <-c.pending:
		return copy(b, framed), nil
	default:
	}

	// Block on whichever comes first: a queued synthetic response or a
	// real read from the wire.
	type result struct {
		n   int
		err error
	}
	realCh := make(chan result, 1)
	go func() {
		n, err := c.Conn.Read(b)
		realCh <- result{n, err}
	}()

	select {
	case framed := <-c.pending:
		return copy(b, framed), nil
	case r := <-realCh:
		return r.n, r.err
	}
}

func frameOverhead(tcp bool) int {
	if tcp {
		return 2
	}
	return 0
}

func frame(msg []byte, tcp bool) []byte {
	if !tcp {
		return msg
	}
	out := make([]byte, 2+len(msg))
	binary.BigEndian.PutUint16(out, uint16(len(msg)))
	copy(out[2:], msg)
	return out
}

// decodeQuery parses a DNS query datagram, stripping the 2-byte TCP
// length prefix when present.
func decodeQuery(b []byte, tcp bool) (dnsmessage.Message, []byte, error) {
	payload := b
	if tcp {
		if len(b) < 2 {
			return dnsmessage.Message{}, nil, errShortMessage
		}
		n := binary.BigEndian.Uint16(b)
		if len(b) < int(n)+2 {
			return dnsmessage.Message{}, nil, errShortMessage
		}
		payload = b[2 : 2+n]
	}
	var msg dnsmessage.Message
	if err := msg.Unpack(payload); err != nil {
		return dnsmessage.Message{}, nil, err
	}
	return msg, payload, nil
}

var errShortMessage = errors.New("dns message shorter than declared length")

// questionName returns the QNAME of the first question, without the
// trailing root dot, or "" if there is no question section.
func questionName(msg dnsmessage.Message) string {
	if len(msg.Questions) == 0 {
		return ""
	}
	return strings.TrimSuffix(msg.Questions[0].Name.String(), ".")
}

// buildNXDOMAIN synthesizes a name-error response matching query's
// transaction ID and question section, equivalent in shape to a real
// NXDOMAIN reply.
func buildNXDOMAIN(query dnsmessage.Message) []byte {
	builder := dnsmessage.NewBuilder(nil, dnsmessage.Header{
		ID:                 query.Header.ID,
		Response:           true,
		Authoritative:      false,
		RecursionDesired:   query.Header.RecursionDesired,
		RecursionAvailable: true,
		RCode:              dnsmessage.RCodeNameError,
	})
	builder.StartQuestions()
	for _, q := range query.Questions {
		_ = builder.Question(q)
	}
	out, err := builder.Finish()
	if err != nil {
		return nil
	}
	return out
}
