package utils

import (
	"math/rand"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Alphabet for invite codes. Uniform independent draws, deliberately not
// cryptographically hardened: the code is a rotating shared secret, not a
// per-invite credential.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// InviteCodeLength is the fixed length of workspace invite codes
const InviteCodeLength = 6

// GenerateInviteCode returns a random code of the given length
func GenerateInviteCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = inviteCodeAlphabet[rand.Intn(len(inviteCodeAlphabet))]
	}
	return string(code)
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		CaptureError(message, err)
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ParseInt safely parses a string to int with a fallback
func ParseInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

// PaginatedResponse structure for paginated results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
