// ABOUTME: Generic response envelope shared by every remote endpoint
// ABOUTME: Wraps payloads as {statusCode, data, message, success}

package models

// Envelope is the outer shape of every API response
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}
