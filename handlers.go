package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sellintostrength/speculator/models"
	"github.com/sellintostrength/speculator/pkg/images"
	"github.com/sellintostrength/speculator/pkg/journal"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRE = regexp.MustCompile(`^[0-9]{2,3}-[0-9]{3,4}-[0-9]{4}$`)
)

var store *journal.Store

func setupRoutes(r *gin.Engine) {
	store = journal.NewStore(db)

	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	r.Static("/public", uploadBaseDir())

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.GET("/users", listUsersHandler)
	authGroup.GET("/users/:id/notes/:year/:month", monthSummaryHandler)
	authGroup.GET("/users/:id/notes/:year/:month/:day", getNoteHandler)
	authGroup.PUT("/users/:id/notes/:year/:month/:day", putNoteHandler)
	authGroup.DELETE("/users/:id/notes/:year/:month/:day", deleteNoteHandler)
	authGroup.POST("/users/:id/notes/:year/:month/:day/images", uploadNoteImageHandler)
	authGroup.DELETE("/images/:id", deleteImageHandler)
	authGroup.GET("/resources", listResourcesHandler)
	authGroup.POST("/resources", uploadResourceHandler)
	authGroup.GET("/resources/:id/file", resourceFileHandler)
	authGroup.DELETE("/resources/:id", deleteResourceHandler)

	adminGroup := authGroup.Group("/admin")
	adminGroup.Use(adminOnlyMiddleware())
	adminGroup.POST("/users", adminCreateUserHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != "administrator" {
			c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	role, _ := c.Get("role")
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username, "name": user.DisplayName, "role": role})
}

// listUsersHandler returns the journal owner directory shown on the landing page.
func listUsersHandler(c *gin.Context) {
	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"id": u.ID, "name": u.DisplayName, "email": u.Email})
	}
	c.JSON(http.StatusOK, out)
}

// noteKey is the parsed owner-day tuple from the URL.
type noteKey struct {
	ownerID uint
	year    int
	month   int
	day     int
}

func parseNoteKey(c *gin.Context, withDay bool) (noteKey, bool) {
	var k noteKey
	owner, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || owner == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return k, false
	}
	k.ownerID = uint(owner)
	k.year, err = strconv.Atoi(c.Param("year"))
	if err != nil || k.year < 1 || k.year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return k, false
	}
	k.month, err = strconv.Atoi(c.Param("month"))
	if err != nil || k.month < 1 || k.month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return k, false
	}
	if withDay {
		k.day, err = strconv.Atoi(c.Param("day"))
		if err != nil || k.day < 1 || k.day > journal.DaysInMonth(k.year, k.month) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
			return k, false
		}
	}
	return k, true
}

// getNoteHandler returns one day's note with its images. Any authenticated
// user may read any journal; a missing note is reported as 404 and the
// front-end renders an empty form.
func getNoteHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	k, ok := parseNoteKey(c, true)
	if !ok {
		return
	}
	if !journal.CanRead(requester.ID, k.ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	note, err := store.GetNoteWithImages(k.ownerID, k.year, k.month, k.day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            note.ID,
		"text":          note.Text,
		"return_rate":   strOrEmpty(note.ReturnRate),
		"profit_amount": strOrEmpty(note.ProfitAmount),
		"updated_at":    note.UpdatedAt,
		"images":        note.Images,
		"can_write":     journal.CanWrite(requester.ID, k.ownerID),
	})
}

// putNoteHandler saves one day's note with upsert semantics: the first save
// for a day inserts, later saves update in place.
func putNoteHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	k, ok := parseNoteKey(c, true)
	if !ok {
		return
	}
	if !journal.CanWrite(requester.ID, k.ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only: not your journal"})
		return
	}
	var req struct {
		Text         string `json:"text"`
		ReturnRate   string `json:"return_rate"`
		ProfitAmount string `json:"profit_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rate, ok2 := normalizeDecimalField(req.ReturnRate)
	if !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "return_rate is not a number"})
		return
	}
	amount, ok2 := normalizeDecimalField(req.ProfitAmount)
	if !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profit_amount is not a number"})
		return
	}
	note, err := store.UpsertNote(k.ownerID, k.year, k.month, k.day, journal.NoteFields{
		Text:         req.Text,
		ReturnRate:   rate,
		ProfitAmount: amount,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": note.ID})
}

// normalizeDecimalField trims a user-entered decimal string. Empty means
// "not entered" and maps to nil; anything non-empty must parse.
func normalizeDecimalField(s string) (*string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return nil, false
	}
	return &s, true
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// deleteNoteHandler removes a day's note and cascades to its images,
// including the stored files.
func deleteNoteHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	k, ok := parseNoteKey(c, true)
	if !ok {
		return
	}
	if !journal.CanWrite(requester.ID, k.ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only: not your journal"})
		return
	}
	removed, err := store.DeleteNote(k.ownerID, k.year, k.month, k.day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	for _, img := range removed {
		removeStoredFile(img.StorePath)
		removeStoredFile(img.ThumbPath)
	}
	c.JSON(http.StatusOK, gin.H{"deleted_images": len(removed)})
}

func monthSummaryHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	k, ok := parseNoteKey(c, false)
	if !ok {
		return
	}
	if !journal.CanRead(requester.ID, k.ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	summary, err := journal.SummarizeMonth(store, k.ownerID, k.year, k.month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// uploadNoteImageHandler handles multipart image upload for one day's note.
// The note must be saved before images can attach.
func uploadNoteImageHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	k, ok := parseNoteKey(c, true)
	if !ok {
		return
	}
	if !journal.CanWrite(requester.ID, k.ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only: not your journal"})
		return
	}
	note, err := store.GetNote(k.ownerID, k.year, k.month, k.day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if note == nil {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "save the note before attaching images"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	if !images.IsSupported(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}
	storedName := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	baseDir := uploadBaseDir()
	fullPath := filepath.Join(baseDir, "notes", storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	// thumbnail is best-effort; the full image is the record of truth
	thumbPath := ""
	thumbFull := filepath.Join(baseDir, "thumbs", storedName)
	if err := images.Thumbnail(fullPath, thumbFull); err != nil {
		logger.Warnw("thumbnail generation failed", "file", storedName, "error", err)
	} else {
		thumbPath = "public/thumbs/" + storedName
	}
	img, err := store.AddImage(note.ID, file.Filename, "public/notes/"+storedName, thumbPath, images.MimeByExt(file.Filename))
	if err != nil {
		// note save and image insert are not one transaction; undo the file
		// and surface an image-specific failure
		_ = os.Remove(fullPath)
		if thumbPath != "" {
			_ = os.Remove(thumbFull)
		}
		if errors.Is(err, journal.ErrNoteNotSaved) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "save the note before attaching images"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image record failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": img.ID, "store_path": img.StorePath, "thumb_path": img.ThumbPath})
}

// deleteImageHandler removes one attached image (row and files). Owner only.
func deleteImageHandler(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}
	img, err := store.GetImage(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	note, err := store.NoteByID(img.NoteID)
	if err != nil || note == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !journal.CanWrite(requester.ID, note.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only: not your journal"})
		return
	}
	if err := store.RemoveImage(img.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	removeStoredFile(img.StorePath)
	removeStoredFile(img.ThumbPath)
	c.JSON(http.StatusOK, gin.H{"message": "image removed"})
}

// removeStoredFile maps a public store path back to the local file and
// removes it. Missing files are fine.
func removeStoredFile(storePath string) {
	if storePath == "" {
		return
	}
	rel := strings.TrimPrefix(storePath, "public/")
	_ = os.Remove(filepath.Join(uploadBaseDir(), rel))
}

// listResourcesHandler returns the shared PDF library, newest first.
func listResourcesHandler(c *gin.Context) {
	var resources []models.Resource
	if err := db.Order("id desc").Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, resources)
}

// uploadResourceHandler adds a PDF to the shared library. Any authenticated
// user may upload; only the uploader may delete.
func uploadResourceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	description := c.PostForm("description")
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 20*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 20MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	if ct != "application/pdf" && strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are accepted"})
		return
	}
	storedName := uuid.New().String() + ".pdf"
	fullPath := filepath.Join(uploadBaseDir(), "resources", storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	res := models.Resource{
		Name:        name,
		Description: description,
		StorePath:   "public/resources/" + storedName,
		ContentType: "application/pdf",
		FileSize:    file.Size,
		UploadedBy:  user.ID,
	}
	if err := db.Create(&res).Error; err != nil {
		_ = os.Remove(fullPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": res.ID, "store_path": res.StorePath})
}

// resourceFileHandler serves the stored PDF for the in-app viewer.
func resourceFileHandler(c *gin.Context) {
	id := c.Param("id")
	var res models.Resource
	if err := db.First(&res, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	rel := strings.TrimPrefix(res.StorePath, "public/")
	c.FileAttachment(filepath.Join(uploadBaseDir(), rel), res.Name+".pdf")
}

// deleteResourceHandler removes a library entry; uploader only.
func deleteResourceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id := c.Param("id")
	var res models.Resource
	if err := db.First(&res, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if !journal.CanWrite(user.ID, res.UploadedBy) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the uploader can delete a resource"})
		return
	}
	if err := db.Delete(&res).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	removeStoredFile(res.StorePath)
	c.JSON(http.StatusOK, gin.H{"message": "resource deleted"})
}

// adminCreateUserHandler adds an account. Field format checks live here, not
// in the core; the initial password is the phone's last four digits.
func adminCreateUserHandler(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !emailRE.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !phoneRE.MatchString(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone must look like 010-1234-5678"})
		return
	}
	user, password, err := CreateUser(req.Name, req.Email, req.Phone, "user")
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username, "password": password})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	// Generate JWT token. Resolve role name from RoleID (we only store role_id).
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"token":         tokenString,
		"refresh_token": refreshToken,
		"user_id":       user.ID,
		"name":          user.DisplayName,
	})
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}
