package v1alpha1

// VerifyRequest is the body of a verification request.
type VerifyRequest struct {
	Job      string `json:"job"`
	Build    int    `json:"build"`
	FileName string `json:"fileName"`
}

// VerifyResponse is the result of a verification request.
type VerifyResponse struct {
	Verified bool        `json:"verified" yaml:"verified"`
	Failure  FailureKind `json:"failure,omitempty" yaml:"failure,omitempty"`
	Message  string      `json:"message,omitempty" yaml:"message,omitempty"`
}

// ErrorResponse is returned by the API for failed requests other than
// verification failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
