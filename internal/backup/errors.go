package backup

import (
	"errors"
	"fmt"
)

// VaultError represents errors that occur during vault operations
type VaultError struct {
	Type    VaultErrorType         `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *VaultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause error
func (e *VaultError) Unwrap() error {
	return e.Cause
}

// VaultErrorType represents different types of vault errors
type VaultErrorType string

const (
	VaultErrorTypeStorage       VaultErrorType = "STORAGE_ERROR"
	VaultErrorTypeValidation    VaultErrorType = "VALIDATION_ERROR"
	VaultErrorTypeConfiguration VaultErrorType = "CONFIGURATION_ERROR"
	VaultErrorTypeNotFound      VaultErrorType = "NOT_FOUND_ERROR"
	VaultErrorTypeCompression   VaultErrorType = "COMPRESSION_ERROR"
	VaultErrorTypeEncryption    VaultErrorType = "ENCRYPTION_ERROR"
	VaultErrorTypeArchive       VaultErrorType = "ARCHIVE_ERROR"
)

// NewVaultError creates a new VaultError
func NewVaultError(errorType VaultErrorType, message string, cause error) *VaultError {
	return &VaultError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// WithContext adds context information to the error
func (e *VaultError) WithContext(key string, value interface{}) *VaultError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common error constructors

func NewStorageError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeStorage, message, cause)
}

func NewValidationError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeValidation, message, cause)
}

func NewConfigurationError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeConfiguration, message, cause)
}

func NewNotFoundError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeNotFound, message, cause)
}

func NewCompressionError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeCompression, message, cause)
}

func NewEncryptionError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeEncryption, message, cause)
}

func NewArchiveError(message string, cause error) *VaultError {
	return NewVaultError(VaultErrorTypeArchive, message, cause)
}

// IsNotFound reports whether err is a vault not-found error
func IsNotFound(err error) bool {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Type == VaultErrorTypeNotFound
	}
	return false
}
