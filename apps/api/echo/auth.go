package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

const (
	contextTokenKey = "userToken"
	tokenAudience   = "Chikoro"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	TeacherID    string `json:"teacher_id,omitempty"` // -> TEACHER PORTAL
	StudentID    string `json:"student_id,omitempty"` // -> STUDENT PORTAL
	ParentID     string `json:"parent_id,omitempty"`  // -> PARENT PORTAL
}

// Actor is the caller the claims were issued to.
func (c Claims) Actor() user.Actor {
	return user.Actor{
		UserID: c.Subject,
		Email:  c.Email,
		Role:   c.Role,
		ProfileIDs: user.ProfileIDs{
			TeacherID: c.TeacherID,
			StudentID: c.StudentID,
			ParentID:  c.ParentID,
		},
	}
}

// TokenIssuer signs access tokens with the app secret key.
type TokenIssuer struct {
	issuer            string
	signingKey        []byte
	expiration        time.Duration
	refreshExpiration time.Duration
}

func NewTokenIssuer(conf *core.Config) *TokenIssuer {
	return &TokenIssuer{
		issuer:            conf.AppName,
		signingKey:        []byte(conf.SecretKey),
		expiration:        conf.Server.JWTExpirationDelta,
		refreshExpiration: conf.Server.JWTRefreshExpirationDelta,
	}
}

func (ti *TokenIssuer) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    ti.signingKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims returns the claims of a token for prof. origIat is the time of the original login, when refreshing.
func (ti *TokenIssuer) Claims(prof user.Profile, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ti.issuer,
			Subject:   prof.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ti.expiration).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        prof.Email,
		Role:         prof.Role,
		TeacherID:    prof.TeacherID,
		StudentID:    prof.StudentID,
		ParentID:     prof.ParentID,
	}
}

// Generate signs claims into a token string.
func (ti *TokenIssuer) Generate(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString(ti.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Token is a shorthand for Generate(Claims(prof)).
func (ti *TokenIssuer) Token(prof user.Profile) (string, error) {
	return ti.Generate(ti.Claims(prof))
}

// refreshExpired reports whether the original login of claims is too old to be refreshed.
func (ti *TokenIssuer) refreshExpired(claims Claims) bool {
	return time.Now().After(time.Unix(claims.OrigIssuedAt, 0).Add(ti.refreshExpiration))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextActor returns the authenticated caller, or a zero Actor on public endpoints.
func contextActor(ctx echo.Context) user.Actor {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.Actor{}
	}
	return claims.Actor()
}
