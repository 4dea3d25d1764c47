// Package wire implements the JSON-over-HTTP protocol between fsserver
// and its collaborators (fscli, fsmount, fsmcp), grounded directly in
// internal/communication/http_communicator.go's net/http + encoding/json
// approach: the teacher already treats HTTP/JSON as its non-protobuf
// transport option, so it is the natural stdlib grounding here rather
// than a gap.
package wire

import "encoding/json"

// Request is the body of a POST /exec call: run one FS.* command against
// one key.
type Request struct {
	Key  string   `json:"key"`
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}

// Response is the body of every /exec reply. Reply carries the raw JSON
// encoding of whatever internal/store.Host.Dispatch returned; Err is the
// dispatch error's message, or empty on success. Clients check Err
// first, then decode Reply into the shape the command they called
// promises.
type Response struct {
	Reply json.RawMessage `json:"reply,omitempty"`
	Err   string          `json:"error,omitempty"`
}

func isNullOrEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
