package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
	"github.com/KilimcininKorOglu/obasdk/internal/logging"
)

// Client errors
var (
	// ErrClosed is returned when the connection is closed
	ErrClosed = errors.New("client: connection closed")
	// ErrInvalidMessage is returned when a response cannot be framed
	ErrInvalidMessage = errors.New("client: invalid message")
	// ErrMessageTooLarge is returned when a response exceeds the size limit
	ErrMessageTooLarge = errors.New("client: message too large")
	// ErrUnexpectedResponse is returned when the server answers with the wrong operation
	ErrUnexpectedResponse = errors.New("client: unexpected response")
	// ErrReferralLimitExceeded is returned when a request is nested too deeply
	ErrReferralLimitExceeded = errors.New("client: referral limit exceeded")
	// ErrUnsupportedScheme is returned for server URLs other than ldap://
	ErrUnsupportedScheme = errors.New("client: unsupported URL scheme")
)

// MaxReferralHops is the deepest request nesting ProcessExtendedOperation
// accepts.
const MaxReferralHops = 10

// noticeOfDisconnectionOID identifies the unsolicited notification a server
// sends before dropping the connection.
const noticeOfDisconnectionOID = "1.3.6.1.4.1.1466.20036"

// Conn is a synchronous LDAP connection. Requests are sent one at a time;
// Close may be called concurrently with a request in flight.
type Conn struct {
	conn            net.Conn
	reader          *bufio.Reader
	logger          logging.Logger
	responseTimeout time.Duration
	maxMessageSize  int

	// mu serializes round trips and guards lastID
	mu     sync.Mutex
	lastID int
	closed atomic.Bool
}

// Dial connects to an LDAP server. addr is "host:port" or "ldap://host:port".
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	hostport, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}

	d := net.Dialer{Timeout: o.dialTimeout}
	nc, err := d.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", hostport, err)
	}
	return newConn(nc, o), nil
}

// NewConn wraps an established network connection.
func NewConn(nc net.Conn, opts ...Option) *Conn {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newConn(nc, o)
}

func newConn(nc net.Conn, o options) *Conn {
	c := &Conn{
		conn:            nc,
		reader:          bufio.NewReader(nc),
		responseTimeout: o.responseTimeout,
		maxMessageSize:  o.maxMessageSize,
	}
	c.logger = o.logger.WithRequestID(logging.GenerateRequestID()).WithFields("server", remoteAddr(nc))
	c.logger.Debug("connection established")
	return c
}

func parseAddress(addr string) (string, error) {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok {
		return addr, nil
	}
	if !strings.EqualFold(scheme, "ldap") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	rest = strings.TrimSuffix(rest, "/")
	if _, _, err := net.SplitHostPort(rest); err != nil {
		rest = net.JoinHostPort(rest, "389")
	}
	return rest, nil
}

func remoteAddr(nc net.Conn) string {
	if a := nc.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// ProcessExtendedOperation sends req and waits for its extended response. A
// non-success result code is returned as a result, not an error. Response
// controls with a registered decoder carry their typed values.
func (c *Conn) ProcessExtendedOperation(ctx context.Context, req *ldap.ExtendedRequest, depth int) (*ldap.ExtendedResult, error) {
	if depth > MaxReferralHops {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrReferralLimitExceeded, depth, MaxReferralHops)
	}

	timeout := req.ResponseTimeout
	if timeout <= 0 {
		timeout = c.responseTimeout
	}

	start := time.Now()
	resp, err := c.roundTrip(ctx, timeout, ldap.ApplicationExtendedResponse, req.Message)
	if err != nil {
		return nil, fmt.Errorf("client: extended operation %s: %w", req.OID, err)
	}

	result, err := ldap.ParseExtendedResponse(resp.Operation.Data)
	if err != nil {
		return nil, fmt.Errorf("client: extended operation %s: %w", req.OID, err)
	}
	result.MessageID = resp.MessageID
	result.Controls, err = ldap.DecodeControlsLenient(resp.Controls)
	if err != nil {
		c.logger.Debug("keeping undecodable response controls generic", "oid", req.OID, "error", err)
	}

	c.logger.Debug("extended operation completed",
		"oid", req.OID,
		"message_id", resp.MessageID,
		"result", result.LDAPResult.String(),
		"duration", time.Since(start))
	return result, nil
}

// Bind performs a simple bind. A non-success result is returned as a
// *ldap.ResultError.
func (c *Conn) Bind(ctx context.Context, dn string, password []byte) error {
	req := ldap.NewSimpleBindRequest(dn, password)
	resp, err := c.roundTrip(ctx, c.responseTimeout, ldap.ApplicationBindResponse, req.Message)
	if err != nil {
		return fmt.Errorf("client: bind: %w", err)
	}

	result, err := ldap.ParseBindResponse(resp.Operation.Data)
	if err != nil {
		return fmt.Errorf("client: bind: %w", err)
	}
	if !result.ResultCode.IsSuccess() {
		return &ldap.ResultError{Op: "bind", Result: result.LDAPResult}
	}

	c.logger.Debug("bind successful", "dn", dn)
	return nil
}

// Unbind sends an unbind request and closes the connection.
func (c *Conn) Unbind() error {
	if c.closed.Load() {
		return nil
	}

	c.mu.Lock()
	err := c.writeMessage((&ldap.UnbindRequest{}).Message(c.nextMessageID()))
	c.mu.Unlock()

	if cerr := c.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("client: unbind: %w", err)
	}
	return nil
}

// Close closes the connection. Only the first call has an effect.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.logger.Debug("connection closed")
	return c.conn.Close()
}

// Closed reports whether the connection has been closed.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// roundTrip writes the message built for a fresh id and reads until the
// response with that id arrives.
func (c *Conn) roundTrip(ctx context.Context, timeout time.Duration, want int, build func(id int) (*ldap.LDAPMessage, error)) (*ldap.LDAPMessage, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := build(c.nextMessageID())
	if err != nil {
		return nil, err
	}

	stop := c.watch(ctx)
	defer stop()

	if err := c.writeMessage(msg); err != nil {
		return nil, c.ioError(ctx, err)
	}

	for {
		resp, err := readMessage(c.reader, c.maxMessageSize)
		if err != nil {
			return nil, c.ioError(ctx, err)
		}

		switch {
		case resp.MessageID == 0 && resp.OperationType() == ldap.ApplicationExtendedResponse:
			if err := c.unsolicited(resp); err != nil {
				return nil, err
			}
		case resp.MessageID != msg.MessageID:
			c.logger.Debug("discarding response for another message", "message_id", resp.MessageID)
		case resp.OperationType() == ldap.ApplicationIntermediateResponse:
			c.logger.Debug("discarding intermediate response", "message_id", resp.MessageID)
		case int(resp.OperationType()) != want:
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.OperationType())
		default:
			return resp, nil
		}
	}
}

// unsolicited handles a notification sent with message id zero.
func (c *Conn) unsolicited(resp *ldap.LDAPMessage) error {
	result, err := ldap.ParseExtendedResponse(resp.Operation.Data)
	if err != nil {
		return err
	}
	if result.OID != noticeOfDisconnectionOID {
		c.logger.Warn("ignoring unsolicited notification", "oid", result.OID)
		return nil
	}
	c.logger.Warn("server sent notice of disconnection", "result", result.LDAPResult.String())
	c.Close()
	return fmt.Errorf("%w: %s", ErrClosed, result.LDAPResult)
}

// watch applies ctx to the connection deadline until stop is called.
func (c *Conn) watch(ctx context.Context) (stop func()) {
	if dl, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(dl)
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			c.conn.SetDeadline(time.Now())
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
		c.conn.SetDeadline(time.Time{})
	}
}

// ioError closes the connection, whose framing can no longer be trusted, and
// reports the context error when the context ended the wait.
func (c *Conn) ioError(ctx context.Context, err error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return err
}

func (c *Conn) writeMessage(msg *ldap.LDAPMessage) error {
	if c.closed.Load() {
		return ErrClosed
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(data)
	return err
}

// nextMessageID returns the next message id, wrapping to 1 after
// ldap.MaxMessageID. Callers hold mu.
func (c *Conn) nextMessageID() int {
	if c.lastID >= ldap.MaxMessageID {
		c.lastID = 0
	}
	c.lastID++
	return c.lastID
}
