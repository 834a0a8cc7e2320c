package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/roompush/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/private", mw, func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestAuthJWT(t *testing.T) {
	issuer, _ := utils.NewTokenIssuer("s3cret", time.Hour)
	forger, _ := utils.NewTokenIssuer("guess", time.Hour)
	valid, _ := issuer.GenerateToken("user-42")
	forged, _ := forger.GenerateToken("user-42")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, ""},
		{"tampered token", "Bearer " + valid + "x", http.StatusBadRequest, ""},
		{"foreign secret", "Bearer " + forged, http.StatusBadRequest, ""},
		{"valid", "Bearer " + valid, http.StatusOK, "user-42"},
		{"lower case scheme", "bearer " + valid, http.StatusOK, "user-42"},
	}

	r := protectedEngine(AuthJWT(issuer))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthJWTQueryToken(t *testing.T) {
	issuer, _ := utils.NewTokenIssuer("s3cret", time.Hour)
	token, _ := issuer.GenerateToken("user-7")

	rr := httptest.NewRecorder()
	protectedEngine(AuthJWT(issuer)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/private?access_token="+token, http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("header-only middleware accepted a query token: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	protectedEngine(AuthJWTQuery(issuer)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/private?access_token="+token, http.NoBody))
	if rr.Code != http.StatusOK || rr.Body.String() != "user-7" {
		t.Errorf("query token: status %d body %q", rr.Code, rr.Body.String())
	}
}

func TestRateLimitByIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewIPRateLimiter(ctx, 1, 2, time.Minute)

	r := gin.New()
	r.POST("/login", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want burst of 2 then 429", codes)
	}

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("second ip got %d", rr.Code)
	}
}

func TestRecoveryReturnsGenericError(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.String() != `{"error":"Internal server error"}` {
		t.Errorf("body = %s", rr.Body.String())
	}
	if rr.Header().Get(HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
}
