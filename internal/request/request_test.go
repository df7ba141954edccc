package request

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/notehq/notehub/internal/models"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestActorFromContext(t *testing.T) {
	t.Parallel()
	a := &models.Actor{Email: "a@b.c", Name: "A", Role: models.RoleMember}
	ctx := WithActor(context.Background(), a)
	got := ActorFromContext(ctx)
	if got != a {
		t.Errorf("ActorFromContext() = %p, want %p", got, a)
	}
	if got != nil && got.Email != "a@b.c" {
		t.Errorf("ActorFromContext().Email = %q, want a@b.c", got.Email)
	}
}

func TestActorFromContext_NoActor(t *testing.T) {
	t.Parallel()
	got := ActorFromContext(context.Background())
	if got != nil {
		t.Errorf("ActorFromContext() = %+v, want nil", got)
	}
}

func TestActorFromContext_WrongType(t *testing.T) {
	t.Parallel()
	ctx := context.WithValue(context.Background(), ActorContextKey(), "not an actor")
	got := ActorFromContext(ctx)
	if got != nil {
		t.Errorf("ActorFromContext() = %+v, want nil when wrong type", got)
	}
}
