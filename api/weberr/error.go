package weberr

import (
	"net/http"
)

// Home is where fallback views lead back to.
const Home = "/products"

type ErrorResponse struct {
	Error string `json:"error"`
	Back  string `json:"back,omitempty"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Error: msg},
		status,
	))

	return Wrap(e, opts...)
}

// NotFound renders the not found view, with a path back to the listing.
func NotFound(err error, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Error: "the resource could not be found", Back: Home},
		http.StatusNotFound,
	))

	return Wrap(e, opts...)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

// BadGateway is for failures of the upstream catalog.
func BadGateway(err error, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Error: "the catalog is currently unavailable", Back: Home},
		http.StatusBadGateway,
	))

	return Wrap(e, opts...)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"too many requests",
		http.StatusTooManyRequests,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}
