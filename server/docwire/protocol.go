package docwire

import "github.com/tuannm99/novadoc/internal/sql/executor"

// Op selects what a request does.
type Op string

const (
	OpExec Op = "exec" // run Statement; the default when Op is empty
	OpAuth Op = "auth" // authenticate the connection with Token
	OpSave Op = "save" // flush the document to its store
	OpPing Op = "ping"
)

// Response codes that are not statement error codes.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL"
)

// ExecuteRequest is one client request.
type ExecuteRequest struct {
	ID        uint64 `json:"id"`
	Op        Op     `json:"op,omitempty"`
	Statement string `json:"statement,omitempty"`
	Token     string `json:"token,omitempty"`
}

// ExecuteResponse answers the request with the same ID. Code is the statement
// error code (e.g. TYPE_MISMATCH) or one of the codes above.
type ExecuteResponse struct {
	ID      uint64           `json:"id"`
	Session string           `json:"session,omitempty"`
	Result  *executor.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
	Code    string           `json:"code,omitempty"`
}
