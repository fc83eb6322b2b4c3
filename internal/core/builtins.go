package core

import (
	"net/mail"
	"os"
	"strings"
	"time"
)

const filePutContentsPerm = 0o600

// defaultFunctions returns the standard host functions available through Call.
func defaultFunctions(r *RealFunctions) map[string]any {
	return map[string]any{
		"error_log":         r.errorLog,
		"file_exists":       fileExists,
		"file_get_contents": fileGetContents,
		"file_put_contents": filePutContents,
		"filter_email":      filterEmail,
		"function_exists":   r.Has,
		"getenv":            os.Getenv,
		"getwd":             os.Getwd,
		"hostname":          os.Hostname,
		"setenv":            os.Setenv,
		"sleep":             time.Sleep,
		"strtolower":        strings.ToLower,
		"strtoupper":        strings.ToUpper,
		"time":              time.Now,
		"trim":              strings.TrimSpace,
		"unlink":            os.Remove,
		"unsetenv":          os.Unsetenv,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileGetContents(path string) (string, error) {
	data, err := os.ReadFile(path)

	return string(data), err
}

func filePutContents(path, data string) (int, error) {
	err := os.WriteFile(path, []byte(data), filePutContentsPerm)
	if err != nil {
		return 0, err
	}

	return len(data), nil
}

// filterEmail returns the bare address when text is a valid email address, and
// false otherwise.
func filterEmail(text string) any {
	address, err := mail.ParseAddress(text)
	if err != nil || address.Address != text {
		return false
	}

	return address.Address
}
