package lightnet

import "testing"

func TestValidateResponse(t *testing.T) {
	cases := []struct {
		name     string
		resp     *Response
		wantKind string // empty means success
	}{
		{"nil response", nil, ErrorTypeInvalidResponse},
		{"200", &Response{StatusCode: 200}, ""},
		{"201", &Response{StatusCode: 201}, ""},
		{"204", &Response{StatusCode: 204}, ""},
		{"299", &Response{StatusCode: 299}, ""},
		{"300", &Response{StatusCode: 300}, ErrorTypeServer},
		{"401", &Response{StatusCode: 401}, ErrorTypeUnauthorized},
		{"403", &Response{StatusCode: 403}, ErrorTypeServer},
		{"408", &Response{StatusCode: 408}, ErrorTypeTimeout},
		{"500", &Response{StatusCode: 500}, ErrorTypeServer},
		{"504", &Response{StatusCode: 504}, ErrorTypeTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateResponse(tc.resp)
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if err == nil || err.Type != tc.wantKind {
				t.Fatalf("expected %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestValidateResponsePreservesServerBody(t *testing.T) {
	err := ValidateResponse(&Response{StatusCode: 500, Body: []byte("boom")})
	if err == nil || err.Type != ErrorTypeServer {
		t.Fatalf("expected Server error, got %v", err)
	}
	if string(err.Body) != "boom" {
		t.Errorf("expected body preserved, got %q", err.Body)
	}
	if err.StatusCode != 500 {
		t.Errorf("expected status 500, got %d", err.StatusCode)
	}
}
