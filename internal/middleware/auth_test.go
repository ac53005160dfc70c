package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"demandhub/internal/config"

	"github.com/gin-gonic/gin"
)

func assinarJWT(t *testing.T, secret string, claims map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return header + "." + payload + "." + sig
}

func TestValidateHS256JWT(t *testing.T) {
	secret := "test-secret"
	now := time.Now()

	valido := assinarJWT(t, secret, map[string]interface{}{
		"user_id":   float64(42),
		"tenant_id": "acme",
		"exp":       now.Add(time.Hour).Unix(),
	})
	claims, err := validateHS256JWT(valido, secret, now)
	if err != nil {
		t.Fatalf("token válido rejeitado: %v", err)
	}
	if claims["tenant_id"] != "acme" {
		t.Errorf("tenant_id = %v", claims["tenant_id"])
	}

	// assinatura de outro segredo
	if _, err := validateHS256JWT(valido, "outro-segredo", now); err == nil {
		t.Error("assinatura inválida aceita")
	}

	// expirado
	expirado := assinarJWT(t, secret, map[string]interface{}{"exp": now.Add(-time.Minute).Unix()})
	if _, err := validateHS256JWT(expirado, secret, now); err == nil {
		t.Error("token expirado aceito")
	}

	// nbf no futuro
	futuro := assinarJWT(t, secret, map[string]interface{}{"nbf": now.Add(time.Hour).Unix()})
	if _, err := validateHS256JWT(futuro, secret, now); err == nil {
		t.Error("token com nbf futuro aceito")
	}

	// formato quebrado
	if _, err := validateHS256JWT("a.b", secret, now); err == nil {
		t.Error("token malformado aceito")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"

	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/protegida", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetUint("user_id"),
			"tenant_id": c.GetString("tenant_id"),
		})
	})

	// sem header -> 401
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegida", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("sem header: status %d, esperava 401", w.Code)
	}

	// token de outro segredo -> 401
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+assinarJWT(t, "errado", map[string]interface{}{"user_id": float64(1)}))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("segredo errado: status %d, esperava 401", w.Code)
	}

	// token válido injeta user_id e tenant_id
	token := assinarJWT(t, "test-secret", map[string]interface{}{
		"user_id":   float64(42),
		"tenant_id": "acme",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("token válido: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		UserID   uint   `json:"user_id"`
		TenantID string `json:"tenant_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != 42 || resp.TenantID != "acme" {
		t.Errorf("claims injetadas = %+v", resp)
	}
}
