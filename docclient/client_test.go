package docclient

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/engine"
	"github.com/tuannm99/novadoc/internal/storage"
	"github.com/tuannm99/novadoc/server/docwire"
)

func serve(t *testing.T, auth docwire.AuthConfig) string {
	t.Helper()
	db, err := engine.Open(context.Background(), engine.Options{Store: storage.NewMemStore("doc.json")})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = docwire.NewServer(db, docwire.ServerConfig{Auth: auth}).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func connect(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	c.SetRWTimeout(5 * time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Exec(t *testing.T) {
	c := connect(t, serve(t, docwire.AuthConfig{}))
	assert.Empty(t, c.Session())

	_, err := c.Exec("IN TABLE 'p' SCHEMA IS ('name' string NN, 'n' short);")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Session())

	res, err := c.Exec("IN TABLE 'p' SET KEY 'name' VALUE TO 'it''s';")
	require.NoError(t, err)
	v, ok := res.Get("name")
	require.True(t, ok)
	assert.Equal(t, "it's", v.Str())

	res, err = c.Exec("IN TABLE 'p' SET KEY 'n' VALUE TO -99999 WHEREVER 'name' = 'IT''S';")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	v, _ = res.Get("n")
	assert.Equal(t, int64(-32768), v.Int64())

	_, err = c.Exec("IN TABLE 'p' SET KEY 'name' VALUE TO NULL;")
	require.ErrorIs(t, err, dberr.ErrNullViolation)

	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Save(context.Background()))
}

func TestClient_Auth(t *testing.T) {
	c := connect(t, serve(t, docwire.AuthConfig{Enabled: true, JWTSecret: "k"}))

	_, err := c.Exec("SETUP TABLE 't';")
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, docwire.CodeUnauthenticated, re.Code)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ann"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, c.Auth(context.Background(), tok))

	_, err = c.Exec("SETUP TABLE 't';")
	require.NoError(t, err)
}

func TestClient_ContextDeadline(t *testing.T) {
	c := connect(t, serve(t, docwire.AuthConfig{}))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.ExecContext(ctx, "SETUP TABLE 'x';")
	require.NoError(t, err)
}

func TestClient_Nil(t *testing.T) {
	var c *Client
	_, err := c.Exec("SETUP TABLE 'x';")
	require.Error(t, err)
	require.NoError(t, c.Close())
}
