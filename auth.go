package main

import (
	"fmt"
	"strings"

	"github.com/sellintostrength/speculator/models"

	"golang.org/x/crypto/bcrypt"
)

// Account helpers kept in the root package so handlers can call them.
//
// The account scheme mirrors the admin flow of the journal app: accounts are
// created from name+email+phone, the email is the login handle and the
// initial password is the last four digits of the phone number. Unlike the
// original it is stored bcrypt-hashed.

// CreateUser creates an account with the given role name and returns the
// record plus the generated initial password (for the admin to hand out).
func CreateUser(name, email, phone, roleName string) (models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || phone == "" {
		return models.User{}, "", fmt.Errorf("name, email and phone are required")
	}
	password, err := passwordFromPhone(phone)
	if err != nil {
		return models.User{}, "", err
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", email).First(&existing).Error; err == nil {
		return models.User{}, "", fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", err
	}
	// ensure role exists (idempotent)
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = models.Role{Name: roleName}
		if err2 := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err2 != nil {
			return models.User{}, "", fmt.Errorf("failed to ensure %s role: %v", roleName, err2)
		}
	}
	rid := role.ID
	user := models.User{
		Username:       email,
		DisplayName:    name,
		Email:          email,
		Phone:          phone,
		HashedPassword: hashedPassword,
		RoleID:         &rid,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return models.User{}, "", fmt.Errorf("user already exists")
		}
		return models.User{}, "", err
	}
	return user, password, nil
}

// passwordFromPhone extracts the last four digits of a phone number.
func passwordFromPhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 4 {
		return "", fmt.Errorf("phone number must contain at least 4 digits")
	}
	return digits[len(digits)-4:], nil
}

func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
