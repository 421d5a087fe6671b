package stub

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const ctxSubjectKey = "subject"

// access token発行（HS256）
func (s *Server) issueAccessToken(subject string, kind tokenKind) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  subject,
		"kind": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(s.accessTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// refresh tokenはuuid。使い回しできないよう発行側で台帳管理する。
// 呼び出し側でmuを取ること。
func (s *Server) issueRefreshTokenLocked(subject string, kind tokenKind) string {
	token := uuid.NewString()
	s.refreshTokens[token] = refreshRecord{Subject: subject, Kind: kind}
	return token
}

// bearerAuth用のJWT検証ミドルウェア。
func (s *Server) authJWT(kind tokenKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return s.secret, nil
			})
			if err != nil || token == nil || !token.Valid {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}
			if k, _ := claims["kind"].(string); k != string(kind) {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return detailJSON(c, http.StatusUnauthorized, "unauthorized")
			}

			c.Set(ctxSubjectKey, sub)
			return next(c)
		}
	}
}

func subjectFromContext(c echo.Context) string {
	sub, _ := c.Get(ctxSubjectKey).(string)
	return sub
}

// ===== user auth =====

type registerUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	DOB      string `json:"DOB"`
	Address  struct {
		Street     string `json:"street"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	} `json:"address"`
}

func (s *Server) registerUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return detailJSON(c, http.StatusBadRequest, "email and password are required")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return detailJSON(c, http.StatusInternalServerError, "internal error")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		return detailJSON(c, http.StatusConflict, "email already registered")
	}

	s.users[req.Email] = &account{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(pwHash),
		DOB:          req.DOB,
	}

	//登録時の住所はデフォルト住所として入れる
	if req.Address.Street != "" {
		s.addresses[req.Email] = append(s.addresses[req.Email], addressFromInput(req.Address.Street, req.Address.City, req.Address.State, req.Address.PostalCode, req.Address.Country, true))
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "registered"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

func (s *Server) loginUser(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[req.Email]
	if !ok {
		return detailJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return detailJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, err := s.issueAccessToken(u.Email, kindUser)
	if err != nil {
		return detailJSON(c, http.StatusInternalServerError, "internal error")
	}
	refresh := s.issueRefreshTokenLocked(u.Email, kindUser)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Username:     u.Username,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// refreshは回転式：古いtokenは失効して新しいペアを返す。
func (s *Server) refreshUser(c echo.Context) error {
	return s.refreshToken(c, kindUser)
}

func (s *Server) refreshVendor(c echo.Context) error {
	return s.refreshToken(c, kindVendor)
}

func (s *Server) refreshToken(c echo.Context, kind tokenKind) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.refreshTokens[req.RefreshToken]
	if !ok || rec.Kind != kind {
		return detailJSON(c, http.StatusUnauthorized, "invalid refresh token")
	}
	delete(s.refreshTokens, req.RefreshToken)

	access, err := s.issueAccessToken(rec.Subject, kind)
	if err != nil {
		return detailJSON(c, http.StatusInternalServerError, "internal error")
	}
	refresh := s.issueRefreshTokenLocked(rec.Subject, kind)

	return c.JSON(http.StatusOK, refreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// ===== vendor auth =====

type registerVendorRequest struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (s *Server) registerVendor(c echo.Context) error {
	var req registerVendorRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.CompanyName == "" || req.Email == "" || req.Password == "" {
		return detailJSON(c, http.StatusBadRequest, "companyName, email and password are required")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return detailJSON(c, http.StatusInternalServerError, "internal error")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vendors[req.Email]; exists {
		return detailJSON(c, http.StatusConflict, "email already registered")
	}

	s.vendors[req.Email] = &vendorAccount{
		VendorID:     uuid.NewString(),
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		PasswordHash: string(pwHash),
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "registered"})
}

type vendorLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CompanyName  string `json:"companyName"`
	VendorID     string `json:"vendor_id"`
}

func (s *Server) loginVendor(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vendors[req.Email]
	if !ok {
		return detailJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(req.Password)); err != nil {
		return detailJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, err := s.issueAccessToken(v.Email, kindVendor)
	if err != nil {
		return detailJSON(c, http.StatusInternalServerError, "internal error")
	}
	refresh := s.issueRefreshTokenLocked(v.Email, kindVendor)

	return c.JSON(http.StatusOK, vendorLoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		CompanyName:  v.CompanyName,
		VendorID:     v.VendorID,
	})
}
