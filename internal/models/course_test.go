// ABOUTME: Tests for catalog record helpers and JSON field mapping
// ABOUTME: Verifies instructor naming and remote identifier decoding

package models

import (
	"encoding/json"
	"testing"
)

func TestInstructorFullName(t *testing.T) {
	tests := []struct {
		name       string
		instructor Instructor
		want       string
	}{
		{"first and last", Instructor{Name: PersonName{First: "Ada", Last: "Lovelace"}}, "Ada Lovelace"},
		{"first only", Instructor{Name: PersonName{First: "Ada"}}, "Ada"},
		{"falls back to login", Instructor{Login: Login{Username: "ada99"}}, "ada99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.instructor.FullName(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUserDecodesRemoteID(t *testing.T) {
	var env Envelope[AuthData]
	body := `{"statusCode":200,"success":true,"message":"ok","data":{"user":{"_id":"u1","username":"abc","email":"a@b.com","role":"user"},"accessToken":"A1","refreshToken":"R1"}}`
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Data.User.ID != "u1" {
		t.Errorf("expected user id u1, got %q", env.Data.User.ID)
	}
	if env.Data.AccessToken != "A1" || env.Data.RefreshToken != "R1" {
		t.Errorf("unexpected tokens: %+v", env.Data)
	}
	if !env.Success {
		t.Error("expected success true")
	}
}
