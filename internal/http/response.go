package http

import "userdir/pkg/types"

type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusSuccess indicates an operation completed successfully.
	StatusSuccess Status = "success"

	// StatusError indicates an operation failed.
	StatusError Status = "error"
)

// Response represents the standard partition API response format.
type Response struct {
	Status Status       `json:"status,omitempty"`
	ID     string       `json:"id,omitempty"`
	User   *types.User  `json:"user,omitempty"`
	Users  []types.User `json:"users,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewIDResponse(id string) Response {
	return Response{Status: StatusSuccess, ID: id}
}

func NewUserResponse(u types.User) Response {
	return Response{Status: StatusSuccess, User: &u}
}

func NewUsersResponse(users []types.User) Response {
	return Response{Status: StatusSuccess, Users: users}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}
