package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // errors matches repository sentinels
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "github.com/sirupsen/logrus"  // structured logging of server-side failures

    "github.com/iliyamo/vidly/internal/config"     // app configuration
    "github.com/iliyamo/vidly/internal/model"      // staff roles
    "github.com/iliyamo/vidly/internal/repository" // DB repositories
    "github.com/iliyamo/vidly/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for the staff account endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
    Log    *logrus.Logger
    Now    func() time.Time
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log *logrus.Logger) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log, Now: time.Now}
}

// ----- DTOs -----

type credentialsReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type newUserReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"` // defaults to STAFF
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type roleReq struct {
    Role string `json:"role"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func (h *AuthHandler) bindCredentials(c echo.Context) (credentialsReq, bool) {
    var req credentialsReq
    if err := c.Bind(&req); err != nil {
        return req, false
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    return req, req.Email != "" && req.Password != ""
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, status int, u userPart) error {
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        h.Log.WithError(err).Error("issue refresh token")
        return c.JSON(http.StatusInternalServerError, errorBody("issue refresh failed"))
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        h.Log.WithError(err).Error("store refresh token")
        return c.JSON(http.StatusInternalServerError, errorBody("save refresh failed"))
    }
    return h.respond(c, status, u, refresh)
}

// respond signs an access token for u and writes it with refresh.
func (h *AuthHandler) respond(c echo.Context, status int, u userPart, refresh utils.RefreshToken) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        h.Log.WithError(err).Error("issue access token")
        return c.JSON(http.StatusInternalServerError, errorBody("issue access failed"))
    }
    return c.JSON(status, authResp{
        User:    u,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// Register creates the first account of an empty store, as MANAGER, and
// returns tokens immediately.  Afterwards accounts are created by managers
// through CreateUser and this endpoint answers 403.
func (h *AuthHandler) Register(c echo.Context) error {
    req, ok := h.bindCredentials(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("email/password required"))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Bootstrap(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return h.createError(c, err)
    }
    return h.issue(ctx, c, http.StatusCreated, userPart{ID: uid, Email: req.Email, Role: model.RoleManager})
}

// CreateUser handles POST /v1/users (MANAGER only).  The new account gets
// no tokens here; its owner logs in with the password.
func (h *AuthHandler) CreateUser(c echo.Context) error {
    var req newUserReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, errorBody("email/password required"))
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role == "" {
        role = model.RoleStaff
    }
    if role != model.RoleStaff && role != model.RoleManager {
        return c.JSON(http.StatusBadRequest, errorBody("role must be STAFF or MANAGER"))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost, role)
    if err != nil {
        return h.createError(c, err)
    }
    return c.JSON(http.StatusCreated, userPart{ID: uid, Email: req.Email, Role: role})
}

func (h *AuthHandler) createError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, utils.ErrPasswordTooShort):
        return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, errorBody("email already exists"))
    case errors.Is(err, repository.ErrRegistrationClosed):
        return c.JSON(http.StatusForbidden, errorBody("registration closed; ask a manager for an account"))
    }
    h.Log.WithError(err).Error("create user")
    return c.JSON(http.StatusInternalServerError, errorBody("create user failed"))
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    req, ok := h.bindCredentials(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("email/password required"))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
        }
        h.Log.WithError(err).Error("load user")
        return c.JSON(http.StatusInternalServerError, errorBody("query failed"))
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, errorBody("account disabled"))
    }
    return h.issue(ctx, c, http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}

// Refresh exchanges a refresh token for a new pair.  The old token is
// revoked in the same transaction that stores the new one.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, errorBody("refresh_token required"))
    }
    oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    next, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        h.Log.WithError(err).Error("issue refresh token")
        return c.JSON(http.StatusInternalServerError, errorBody("issue refresh failed"))
    }
    userID, err := h.Tokens.Rotate(ctx, oldHash, utils.HashRefreshRaw(next.Raw), next.Exp, h.Now())
    if err != nil {
        if errors.Is(err, repository.ErrRefreshInvalid) {
            return c.JSON(http.StatusUnauthorized, errorBody("invalid refresh"))
        }
        h.Log.WithError(err).Error("rotate refresh token")
        return c.JSON(http.StatusInternalServerError, errorBody("refresh failed"))
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil || !u.IsActive {
        return c.JSON(http.StatusUnauthorized, errorBody("invalid refresh"))
    }
    return h.respond(c, http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role}, next)
}

// Logout revokes either the refresh token in the body or, when only a
// valid Bearer access token is supplied, every refresh token of that user.
func (h *AuthHandler) Logout(c echo.Context) error {
    var uid uint64
    if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
        if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
            uid, _ = claims.UserID()
        }
    }
    var req refreshReq
    _ = c.Bind(&req) // an empty or malformed body just means no refresh token
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    switch {
    case refreshToken != "":
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash, h.Now()); err != nil {
            return c.JSON(http.StatusUnauthorized, errorBody("invalid refresh token"))
        }
        if err := h.Tokens.RevokeByHash(ctx, hash, h.Now()); err != nil {
            h.Log.WithError(err).Error("revoke refresh token")
            return c.JSON(http.StatusInternalServerError, errorBody("logout failed"))
        }
    case uid != 0:
        if err := h.Tokens.RevokeAllForUser(ctx, uid, h.Now()); err != nil {
            h.Log.WithError(err).Error("revoke user tokens")
            return c.JSON(http.StatusInternalServerError, errorBody("logout failed"))
        }
    default:
        return c.JSON(http.StatusBadRequest, errorBody("provide Authorization header or refresh_token"))
    }
    return c.NoContent(http.StatusNoContent)
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": c.Get("user_id"),
        "role":    c.Get("role"),
    })
}

// SetRole handles PUT /v1/users/:id/role (MANAGER only).  Managers cannot
// demote themselves, so a store always keeps at least one manager.
func (h *AuthHandler) SetRole(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    var req roleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != model.RoleStaff && role != model.RoleManager {
        return c.JSON(http.StatusBadRequest, errorBody("role must be STAFF or MANAGER"))
    }
    if self, _ := getUserID(c); self == id && role != model.RoleManager {
        return c.JSON(http.StatusConflict, errorBody("cannot demote yourself"))
    }
    if err := h.Users.SetRole(c.Request().Context(), id, role); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, errorBody("user not found"))
        }
        h.Log.WithError(err).Error("set role")
        return c.JSON(http.StatusInternalServerError, errorBody("update failed"))
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
}
