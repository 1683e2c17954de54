package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"result": "success"}, func(io.Writer) error {
		t.Fatal("text renderer used in json mode")
		return nil
	})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"result": "success"}, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(42, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "forty-two")
		return err
	}))
	assert.Equal(t, "forty-two\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success(42, nil))
	assert.Equal(t, "42\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeEmptyCart, "cart is empty", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeEmptyCart, resp.Error.Code)
	assert.Equal(t, "cart is empty", resp.Error.Message)
}

func TestOutputFormatter_TextErrorListsFields(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	require.NoError(t, formatter.Error(ErrCodeInvalidInput, "validation failed", map[string]string{
		"phone": "must be 10 digits",
		"email": "is required",
	}))

	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E001]: validation failed\n  email: is required\n  phone: must be 10 digits\n", errOut.String())
}

func TestOutputFormatter_TextErrorDetailsOnlyWhenVerbose(t *testing.T) {
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", ErrWriter: errOut}

	require.NoError(t, formatter.Error(ErrCodeAPI, "Server error", "Internal Server Error"))
	assert.NotContains(t, errOut.String(), "Details")

	errOut.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error(ErrCodeAPI, "Server error", "Internal Server Error"))
	assert.Contains(t, errOut.String(), "Details: Internal Server Error")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		exit    int
		code    string
		message string
	}{
		{
			name:    "validation",
			err:     &validation.Error{Fields: map[string]string{"phone": "must be 10 digits"}},
			exit:    ExitFailure,
			code:    ErrCodeInvalidInput,
			message: "validation failed",
		},
		{
			name:    "invalid query",
			err:     fmt.Errorf("%w: page must be a number", query.ErrInvalid),
			exit:    ExitCommandError,
			code:    ErrCodeInvalidInput,
			message: "invalid query: page must be a number",
		},
		{
			name:    "empty cart",
			err:     checkout.ErrEmptyCart,
			exit:    ExitFailure,
			code:    ErrCodeEmptyCart,
			message: "cart is empty",
		},
		{
			name:    "too many images",
			err:     clients.ErrTooManyImages,
			exit:    ExitCommandError,
			code:    ErrCodeInvalidInput,
			message: "at most 4 images per upload",
		},
		{
			name:    "not logged in",
			err:     clients.ErrUnauthorized,
			exit:    ExitFailure,
			code:    ErrCodeUnauthorized,
			message: "not logged in, run: shopctl admin login",
		},
		{
			name:    "token rejected",
			err:     &clients.APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"},
			exit:    ExitFailure,
			code:    ErrCodeUnauthorized,
			message: "not logged in, run: shopctl admin login",
		},
		{
			name:    "bad credentials",
			err:     &clients.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"},
			exit:    ExitFailure,
			code:    ErrCodeUnauthorized,
			message: "Invalid email or password",
		},
		{
			name:    "not found",
			err:     fmt.Errorf("get: %w", &clients.APIError{StatusCode: http.StatusNotFound, Message: "Product not found"}),
			exit:    ExitFailure,
			code:    ErrCodeNotFound,
			message: "Product not found",
		},
		{
			name:    "api failure",
			err:     &clients.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "Out of stock"},
			exit:    ExitFailure,
			code:    ErrCodeAPI,
			message: "Out of stock",
		},
		{
			name:    "network",
			err:     fmt.Errorf("%w: GET /products: connection refused", clients.ErrNetwork),
			exit:    ExitFailure,
			code:    ErrCodeNetwork,
			message: "network error",
		},
		{
			name:    "exit error",
			err:     NewExitError(ExitFailure, "product 7 is not in the cart"),
			exit:    ExitFailure,
			code:    ErrCodeGeneric,
			message: "product 7 is not in the cart",
		},
		{
			name:    "unknown",
			err:     errors.New(`unknown command "refund" for "shopctl"`),
			exit:    ExitCommandError,
			code:    ErrCodeGeneric,
			message: `unknown command "refund" for "shopctl"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exit, code, message, _ := classify(tt.err)
			assert.Equal(t, tt.exit, exit)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, message)
		})
	}
}
