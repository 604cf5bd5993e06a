// Package docwire serves one document over TCP using length-prefixed JSON frames.
package docwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/engine"
)

type ServerConfig struct {
	Addr   string
	Auth   AuthConfig
	Logger *slog.Logger
}

// Server shares one Database between all connections. Requests are applied one
// at a time in arrival order.
type Server struct {
	cfg ServerConfig
	log *slog.Logger

	mu sync.Mutex // guards db
	db *engine.Database

	wg sync.WaitGroup
}

func NewServer(db *engine.Database, cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{cfg: cfg, log: cfg.Logger, db: db}
}

// ListenAndServe listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// waits for open connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()
	s.log.Info("docwire: listening", "addr", ln.Addr().String(), "auth", s.cfg.Auth.Enabled)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.log.Warn("docwire: accept", "err", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// session is the per-connection state.
type session struct {
	id            string
	authenticated bool
	who           identity
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	sess := &session{id: uuid.New().String()}
	log := s.log.With("session", sess.id, "remote", conn.RemoteAddr().String())
	log.Debug("docwire: connection opened")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() { _ = conn.Close() }()

	fr := NewFramer(conn)
	for {
		var (
			req  ExecuteRequest
			resp ExecuteResponse
		)
		err := fr.Recv(&req)
		switch {
		case errors.Is(err, ErrBadPayload):
			resp = failure(CodeBadRequest, err.Error())
		case err != nil:
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Debug("docwire: read", "err", err)
			}
			return
		default:
			resp = s.handle(ctx, sess, req)
		}

		resp.ID = req.ID
		resp.Session = sess.id
		if err := fr.Send(resp); err != nil {
			log.Debug("docwire: write", "err", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, sess *session, req ExecuteRequest) ExecuteResponse {
	switch req.Op {
	case OpPing:
		return ExecuteResponse{}
	case OpAuth:
		return s.handleAuth(sess, req.Token)
	}

	if s.cfg.Auth.Enabled {
		if !sess.authenticated {
			return failure(CodeUnauthenticated, "authentication required")
		}
		if !sess.who.expiresAt.IsZero() && time.Now().After(sess.who.expiresAt) {
			sess.authenticated = false
			return failure(CodeUnauthenticated, "token expired")
		}
	}

	switch req.Op {
	case OpExec, "":
		return s.exec(ctx, req.Statement)
	case OpSave:
		s.mu.Lock()
		err := s.db.Save(ctx)
		s.mu.Unlock()
		if err != nil {
			return failure(CodeInternal, err.Error())
		}
		return ExecuteResponse{}
	default:
		return failure(CodeBadRequest, fmt.Sprintf("unknown op %q", req.Op))
	}
}

func (s *Server) handleAuth(sess *session, token string) ExecuteResponse {
	if !s.cfg.Auth.Enabled {
		return ExecuteResponse{}
	}
	who, err := s.cfg.Auth.validate(token)
	if err != nil {
		return failure(CodeUnauthenticated, err.Error())
	}
	sess.authenticated = true
	sess.who = who
	s.log.Info("docwire: authenticated", "session", sess.id, "subject", who.subject)
	return ExecuteResponse{}
}

func (s *Server) exec(ctx context.Context, statement string) ExecuteResponse {
	s.mu.Lock()
	res, err := s.db.Execute(ctx, statement)
	s.mu.Unlock()

	if err != nil {
		resp := failure(CodeInternal, err.Error())
		if code := dberr.CodeOf(err); code != 0 {
			resp.Code = code.String()
		}
		// auto-save failures still carry the applied result
		resp.Result = res
		return resp
	}
	return ExecuteResponse{Result: res}
}

func failure(code, msg string) ExecuteResponse {
	return ExecuteResponse{Error: msg, Code: code}
}
