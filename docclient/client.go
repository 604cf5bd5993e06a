// Package docclient talks to a docwire server.
package docclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/sql/executor"
	"github.com/tuannm99/novadoc/server/docwire"
)

// Client is a simple synchronous client.
// It locks send/recv so you can call Exec concurrently but they'll serialize.
type Client struct {
	conn    net.Conn
	fr      *docwire.Framer
	mu      sync.Mutex
	id      atomic.Uint64
	session atomic.Value // string

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

// RemoteError is a failure reported by the server that is not a statement error.
type RemoteError struct {
	Code string
	Msg  string
}

func (e *RemoteError) Error() string { return e.Code + ": " + e.Msg }

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c, fr: docwire.NewFramer(c)}, nil
}

// SetRWTimeout sets a per-request read/write deadline.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Session is the id the server gave this connection, empty before the first reply.
func (c *Client) Session() string {
	s, _ := c.session.Load().(string)
	return s
}

func (c *Client) Exec(statement string) (*executor.Result, error) {
	return c.ExecContext(context.Background(), statement)
}

// ExecContext runs one statement. Statement failures come back as *dberr.Error,
// so errors.Is works with the dberr sentinels.
func (c *Client) ExecContext(ctx context.Context, statement string) (*executor.Result, error) {
	resp, err := c.do(ctx, docwire.ExecuteRequest{Op: docwire.OpExec, Statement: statement})
	if err != nil {
		return resp.Result, err
	}
	return resp.Result, nil
}

// Auth authenticates the connection with a JWT.
func (c *Client) Auth(ctx context.Context, token string) error {
	_, err := c.do(ctx, docwire.ExecuteRequest{Op: docwire.OpAuth, Token: token})
	return err
}

// Save asks the server to flush the document.
func (c *Client) Save(ctx context.Context) error {
	_, err := c.do(ctx, docwire.ExecuteRequest{Op: docwire.OpSave})
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, docwire.ExecuteRequest{Op: docwire.OpPing})
	return err
}

func (c *Client) do(ctx context.Context, req docwire.ExecuteRequest) (docwire.ExecuteResponse, error) {
	var resp docwire.ExecuteResponse
	if c == nil || c.conn == nil {
		return resp, fmt.Errorf("docclient: nil client")
	}

	req.ID = c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyDeadline(ctx); err != nil {
		return resp, err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()

	if err := c.fr.Send(req); err != nil {
		return resp, err
	}
	if err := c.fr.Recv(&resp); err != nil {
		return resp, err
	}
	if resp.ID != req.ID {
		return resp, fmt.Errorf("docclient: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	}
	if resp.Session != "" {
		c.session.Store(resp.Session)
	}
	if resp.Error != "" {
		return resp, remoteError(resp)
	}
	return resp, nil
}

func remoteError(resp docwire.ExecuteResponse) error {
	if code := dberr.ParseCode(resp.Code); code != 0 {
		return &dberr.Error{Code: code, Msg: resp.Error}
	}
	return &RemoteError{Code: resp.Code, Msg: resp.Error}
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use rwTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
