package api

import "net/http"

// Request describes one logical call. The attempt counter is only advanced through
// Retried, which returns a copy, so in-flight requests never share retry state.
type Request struct {
	Method string
	Path   string
	Body   any

	attempt int
}

func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func (r Request) Attempt() int {
	return r.attempt
}

func (r Request) Retried() Request {
	r.attempt++
	return r
}
